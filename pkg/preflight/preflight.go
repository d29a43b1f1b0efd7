// Package preflight parses structured configuration files before they are
// pushed, so a half-edited settings file is caught locally instead of being
// copied to every other machine.
package preflight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sdejongh/aisync/internal/platform"
	"github.com/sdejongh/aisync/pkg/logging"
	"github.com/sdejongh/aisync/pkg/models"
	"gopkg.in/yaml.v3"
)

// Problem describes a local source that failed to parse
type Problem struct {
	Task string
	Path string
	Err  error
}

func (p Problem) String() string {
	return fmt.Sprintf("%s (%s): %v", p.Path, p.Task, p.Err)
}

// ErrInvalidSources is returned by Run in strict mode
var ErrInvalidSources = errors.New("preflight found invalid source files")

// parsers maps a lower-case extension to a syntax check
var parsers = map[string]func([]byte) error{
	".json": parseJSON,
	".toml": parseTOML,
	".yaml": parseYAML,
	".yml":  parseYAML,
}

// Checker validates the local files a run is about to send
type Checker struct {
	logger logging.Logger
}

// NewChecker creates a checker
func NewChecker(logger logging.Logger) *Checker {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Checker{logger: logger}
}

// Check parses the local source of every file task with a known extension.
// A source that an earlier task writes is skipped, since its current
// content is about to be replaced. Directories and missing files are
// skipped too.
func (c *Checker) Check(ctx context.Context, tasks []models.RsyncTask) []Problem {
	var problems []Problem
	written := make(map[string]bool)
	seen := make(map[string]bool)

	for _, task := range tasks {
		src := task.Src
		if !task.IsDirectory && task.LocalSource() && !written[src] && !seen[src] {
			seen[src] = true
			if err := CheckFile(src); err != nil {
				problem := Problem{Task: task.Description, Path: src, Err: err}
				c.logger.Warn(ctx, "Preflight: "+problem.String(), nil)
				problems = append(problems, problem)
			}
		}
		written[task.Dest] = true
	}
	return problems
}

// Run checks tasks and, when strict, turns any problem into an error
func (c *Checker) Run(ctx context.Context, tasks []models.RsyncTask, strict bool) ([]Problem, error) {
	problems := c.Check(ctx, tasks)
	if strict && len(problems) > 0 {
		return problems, fmt.Errorf("%w: %d file(s)", ErrInvalidSources, len(problems))
	}
	return problems, nil
}

// CheckFile parses path according to its extension. Files with an unknown
// extension, missing files and directories yield nil.
func CheckFile(path string) error {
	parse, ok := parsers[strings.ToLower(platform.Ext(path))]
	if !ok {
		return nil
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat: %w", err)
	}
	if info.IsDir() {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read: %w", err)
	}
	return parse(data)
}

func parseJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

func parseTOML(data []byte) error {
	var v map[string]any
	if _, err := toml.Decode(string(data), &v); err != nil {
		return fmt.Errorf("invalid TOML: %w", err)
	}
	return nil
}

func parseYAML(data []byte) error {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}
	return nil
}
