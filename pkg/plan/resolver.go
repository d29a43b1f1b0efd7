package plan

import (
	"path"
	"path/filepath"

	"github.com/sdejongh/aisync/internal/platform"
	"github.com/sdejongh/aisync/pkg/config"
	"github.com/sdejongh/aisync/pkg/models"
)

// Roots are the three base locations a mapping is resolved against
type Roots struct {
	Home string
	// WindowsRoot is empty when no Windows user is configured
	WindowsRoot string
	RemoteUser  string
	RemoteHost  string
	RemoteDir   string
}

// Resolver turns a mapping's relative paths into concrete locations
type Resolver struct {
	roots Roots
}

// NewResolver creates a resolver over roots
func NewResolver(roots Roots) *Resolver {
	return &Resolver{roots: roots}
}

// NewResolverFromConfig derives every root from a configuration that
// already passed ValidateForTransfer
func NewResolverFromConfig(cfg *config.Config) (*Resolver, error) {
	home, err := cfg.LocalHome()
	if err != nil {
		return nil, err
	}

	windowsRoot, _ := cfg.WindowsRoot()
	return NewResolver(Roots{
		Home:        home,
		WindowsRoot: windowsRoot,
		RemoteUser:  cfg.Remote.User,
		RemoteHost:  cfg.Remote.Host,
		RemoteDir:   cfg.Remote.Dir,
	}), nil
}

// HasWindows reports whether Windows locations are available
func (r *Resolver) HasWindows() bool {
	return r.roots.WindowsRoot != ""
}

// Linux returns home/relative_path
func (r *Resolver) Linux(m models.FileMapping) string {
	return filepath.Join(r.roots.Home, m.RelativePath)
}

// Windows returns windows_root/(windows_relative_path or relative_path),
// or false when no Windows user is configured
func (r *Resolver) Windows(m models.FileMapping) (string, bool) {
	if !r.HasWindows() {
		return "", false
	}
	return filepath.Join(r.roots.WindowsRoot, m.WindowsPath()), true
}

// Remote returns user@host:remote_dir/relative_path
func (r *Resolver) Remote(m models.FileMapping) string {
	return platform.RemoteLocator(r.roots.RemoteUser, r.roots.RemoteHost, r.remotePath(m))
}

// RemoteWithSuffix returns the remote location with suffix inserted before
// the extension, e.g. settings.json -> settings.linux.json
func (r *Resolver) RemoteWithSuffix(m models.FileMapping, suffix string) string {
	return platform.RemoteLocator(r.roots.RemoteUser, r.roots.RemoteHost, platform.InsertSuffix(r.remotePath(m), suffix))
}

func (r *Resolver) remotePath(m models.FileMapping) string {
	return path.Join(r.roots.RemoteDir, m.RelativePath)
}
