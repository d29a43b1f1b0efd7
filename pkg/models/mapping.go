package models

import (
	"path"
	"strings"
)

// FileMapping is a logical synchronization unit shared by up to three locations
type FileMapping struct {
	// RelativePath is relative to the home directory on Linux (and Windows by default)
	// and to the remote base directory. It is the catalog's natural key.
	RelativePath string `yaml:"path" json:"path"`

	// WindowsRelativePath overrides RelativePath under the Windows user root,
	// e.g. "Documents/Cline/Rules/" where Linux uses "Cline/Rules/"
	WindowsRelativePath string `yaml:"windows_path,omitempty" json:"windows_path,omitempty"`

	KeepMode KeepMode `yaml:"keep" json:"keep"`

	// IsDirectory requests a recursive transfer with trailing-slash endpoints
	IsDirectory bool `yaml:"dir,omitempty" json:"dir,omitempty"`

	// Description is a human-readable label, used for logs only
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// WindowsPath returns the path relative to the Windows user root
func (m FileMapping) WindowsPath() string {
	if m.WindowsRelativePath != "" {
		return m.WindowsRelativePath
	}
	return m.RelativePath
}

// Label returns the description, falling back to the relative path
func (m FileMapping) Label() string {
	if m.Description != "" {
		return m.Description
	}
	return m.RelativePath
}

// Validate checks that the mapping can be planned
func (m FileMapping) Validate() error {
	if err := validateRelative("path", m.RelativePath); err != nil {
		return err
	}
	if m.WindowsRelativePath != "" {
		if err := validateRelative("windows_path", m.WindowsRelativePath); err != nil {
			return err
		}
	}
	if !m.KeepMode.Valid() {
		return &ValidationError{Field: "keep", Message: "unknown keep mode " + string(m.KeepMode) + " for " + m.RelativePath}
	}
	return nil
}

func validateRelative(field, p string) error {
	if strings.TrimSpace(p) == "" {
		return &ValidationError{Field: field, Message: "path is empty"}
	}
	if path.IsAbs(p) {
		return &ValidationError{Field: field, Message: "must be relative to the home directory: " + p}
	}
	cleaned := path.Clean(p)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return &ValidationError{Field: field, Message: "must stay inside the home directory: " + p}
	}
	return nil
}
