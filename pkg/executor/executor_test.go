package executor_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sdejongh/aisync/pkg/executor"
)

func TestBasicExecution(t *testing.T) {
	result, err := executor.New().Execute(context.Background(), "echo", []string{"hello", "world"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(result.Stdout, "hello world") {
		t.Errorf("expected stdout to contain 'hello world', got: %s", result.Stdout)
	}
	if result.ExitCode != 0 {
		t.Errorf("expected exit code 0, got: %d", result.ExitCode)
	}
}

func TestNonZeroExit(t *testing.T) {
	result, err := executor.New().Execute(context.Background(), "sh", []string{"-c", "echo partial transfer >&2; exit 23"})
	if err == nil {
		t.Fatal("expected an error for exit status 23")
	}

	if result.ExitCode != 23 {
		t.Errorf("expected exit code 23, got: %d", result.ExitCode)
	}
	if !strings.Contains(result.Stderr, "partial transfer") {
		t.Errorf("expected captured stderr, got: %q", result.Stderr)
	}
	if result.TimedOut {
		t.Error("non-zero exit should not be reported as a timeout")
	}
}

func TestMissingProgram(t *testing.T) {
	result, err := executor.New().Execute(context.Background(), "definitely-not-a-real-program-xyz", nil)
	if err == nil {
		t.Fatal("expected an error for a missing program")
	}
	if result == nil {
		t.Fatal("result must be non-nil even when the program cannot start")
	}
	if result.ExitCode != -1 {
		t.Errorf("expected exit code -1, got: %d", result.ExitCode)
	}
}

func TestTimeout(t *testing.T) {
	start := time.Now()
	result, err := executor.New(executor.WithTimeout(100*time.Millisecond)).
		Execute(context.Background(), "sleep", []string{"5"})

	if !errors.Is(err, executor.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got: %v", err)
	}
	if !result.TimedOut {
		t.Error("expected TimedOut to be set")
	}
	if time.Since(start) > 3*time.Second {
		t.Error("timeout did not stop the command")
	}
}

func TestParentCancellationIsNotTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	result, err := executor.New(executor.WithTimeout(10*time.Second)).Execute(ctx, "sleep", []string{"5"})
	if err == nil {
		t.Fatal("expected an error after cancellation")
	}
	if result.TimedOut {
		t.Error("cancellation must not be reported as a timeout")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got: %v", err)
	}
}

func TestEnvironmentVariables(t *testing.T) {
	result, err := executor.New(executor.WithEnvVar("AISYNC_TEST", "base")).
		Execute(context.Background(), "sh", []string{"-c", "echo $AISYNC_TEST $AISYNC_EXTRA"}, executor.WithEnvVar("AISYNC_EXTRA", "call"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(result.Stdout) != "base call" {
		t.Errorf("expected 'base call', got: %q", result.Stdout)
	}
}

func TestCustomWriters(t *testing.T) {
	var stdout, stderr bytes.Buffer
	result, err := executor.New().Execute(
		context.Background(),
		"sh", []string{"-c", "echo out; echo err >&2"},
		executor.WithStdoutWriter(&stdout),
		executor.WithStderrWriter(&stderr),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stdout.String() != "out\n" || result.Stdout != "out\n" {
		t.Errorf("stdout tee = %q, captured = %q", stdout.String(), result.Stdout)
	}
	if stderr.String() != "err\n" || result.Stderr != "err\n" {
		t.Errorf("stderr tee = %q, captured = %q", stderr.String(), result.Stderr)
	}
}
