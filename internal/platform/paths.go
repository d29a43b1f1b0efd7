package platform

import (
	"path"
	"strings"
)

// DefaultWindowsUsersDir is where WSL mounts the Windows user profiles
const DefaultWindowsUsersDir = "/mnt/c/Users"

// Suffixes inserted before the extension of remote copies kept per side
const (
	LinuxSuffix   = ".linux"
	WindowsSuffix = ".windows"
)

// WindowsUserRoot returns the mount-visible home of a Windows user.
// An empty usersDir falls back to DefaultWindowsUsersDir.
func WindowsUserRoot(usersDir, user string) string {
	if usersDir == "" {
		usersDir = DefaultWindowsUsersDir
	}
	return path.Join(usersDir, user)
}

// RemoteLocator formats an rsync remote locator "user@host:path"
func RemoteLocator(user, host, p string) string {
	return user + "@" + host + ":" + p
}

// IsRemote reports whether p is a "host:path" or "user@host:path" locator
func IsRemote(p string) bool {
	colon := strings.IndexByte(p, ':')
	if colon <= 0 {
		return false
	}
	// A slash before the colon means a local path that happens to contain one
	return !strings.ContainsRune(p[:colon], '/')
}

// InsertSuffix inserts suffix right before the extension of the last path
// element, leaving parent directories untouched:
//
//	config.json        -> config.linux.json
//	AGENTS             -> AGENTS.linux
//	.claude.json       -> .claude.linux.json
//	.bashrc            -> .bashrc.linux
//	Cline/Rules/       -> Cline/Rules.linux
//
// A trailing slash is dropped; directory endpoints are normalized later.
func InsertSuffix(p, suffix string) string {
	trimmed := strings.TrimRight(p, "/")
	if trimmed == "" {
		return p
	}

	dir, name := path.Split(trimmed)
	ext := Ext(name)
	stem := strings.TrimSuffix(name, ext)
	return dir + stem + suffix + ext
}

// Ext returns the extension of a file name the way a dotfile-aware user reads
// it: a leading dot starts the name, not an extension, and a trailing dot is
// not an extension either.
func Ext(name string) string {
	ext := path.Ext(name)
	if ext == name || ext == "." {
		return ""
	}
	return ext
}

// EnsureTrailingSeparator makes p end with "/", the rsync convention for
// "copy the contents of this directory"
func EnsureTrailingSeparator(p string) string {
	if strings.HasSuffix(p, "/") {
		return p
	}
	return p + "/"
}

// ValidatePath checks that a configured path is usable
func ValidatePath(p string) error {
	if strings.TrimSpace(p) == "" {
		return &PathError{Path: p, Message: "path is empty"}
	}
	if strings.ContainsAny(p, "\x00\n") {
		return &PathError{Path: p, Message: "path contains a control character"}
	}
	return nil
}

// PathError represents a path validation error
type PathError struct {
	Path    string
	Message string
}

func (e *PathError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Message
}
