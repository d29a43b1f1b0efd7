package models

import (
	"fmt"
	"strings"
)

// Operation selects the overall transfer direction of a run
type Operation string

const (
	// OperationPush transfers from the local machine (Windows/Linux) to the remote server
	OperationPush Operation = "push"
	// OperationPull transfers from the remote server to the local machine
	OperationPull Operation = "pull"
)

// ParseOperation parses an operation name
func ParseOperation(s string) (Operation, error) {
	switch Operation(strings.ToLower(strings.TrimSpace(s))) {
	case OperationPush:
		return OperationPush, nil
	case OperationPull:
		return OperationPull, nil
	}
	return "", &ValidationError{Field: "operation", Message: fmt.Sprintf("unknown operation %q (valid: push, pull)", s)}
}

// KeepMode governs how the Windows and Linux copies of a mapping are reconciled
type KeepMode string

const (
	// KeepPreferWindows treats the Windows copy as authoritative: Windows -> Linux -> Remote
	KeepPreferWindows KeepMode = "prefer_windows"
	// KeepPreferLinux treats the Linux copy as authoritative: Linux -> Windows, Linux -> Remote
	KeepPreferLinux KeepMode = "prefer_linux"
	// KeepBoth stores both copies remotely: Windows -> Remote(.windows), Linux -> Remote(.linux)
	KeepBoth KeepMode = "keep_both"
)

// KeepModes returns every keep mode, in declaration order
func KeepModes() []KeepMode {
	return []KeepMode{KeepPreferWindows, KeepPreferLinux, KeepBoth}
}

// ParseKeepMode accepts both "prefer_windows" and "PREFER_WINDOWS" spellings
func ParseKeepMode(s string) (KeepMode, error) {
	mode := KeepMode(strings.ToLower(strings.TrimSpace(s)))
	if mode.Valid() {
		return mode, nil
	}
	return "", &ValidationError{Field: "keep", Message: fmt.Sprintf("unknown keep mode %q (valid: prefer_windows, prefer_linux, keep_both)", s)}
}

// Valid reports whether m is one of KeepModes()
func (m KeepMode) Valid() bool {
	for _, known := range KeepModes() {
		if m == known {
			return true
		}
	}
	return false
}

// UnmarshalText lets catalog files use either spelling of a keep mode
func (m *KeepMode) UnmarshalText(text []byte) error {
	parsed, err := ParseKeepMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
