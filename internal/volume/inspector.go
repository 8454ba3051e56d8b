// Package volume queries and changes the state of encrypted mappings and
// mounts by driving the system tools.
package volume

import (
	"context"
	"fmt"

	"github.com/nace/disksetup/internal/system"
)

// Paths locates the tables the inspector reads
type Paths struct {
	Crypttab string
	Fstab    string
	Mounts   string
}

// DefaultPaths returns the standard system locations
func DefaultPaths() Paths {
	return Paths{
		Crypttab: "/etc/crypttab",
		Fstab:    "/etc/fstab",
		Mounts:   "/proc/self/mounts",
	}
}

// Inspector observes current crypt and mount state. Every answer is a
// point-in-time read.
type Inspector interface {
	CryptActive(ctx context.Context, name string) (bool, error)
	Mounted(ctx context.Context, deviceOrDir string) (bool, error)
	InCrypttab(name string) (bool, error)
	InFstab(device string) (bool, error)
	MountPoint(deviceOrDir string) (string, error)
}

// SystemInspector answers from cryptsetup and the on-disk tables
type SystemInspector struct {
	runner system.Runner
	paths  Paths
}

// NewInspector creates a new inspector
func NewInspector(runner system.Runner, paths Paths) *SystemInspector {
	return &SystemInspector{
		runner: runner,
		paths:  paths,
	}
}

// CryptActive reports whether the named mapping is open
func (i *SystemInspector) CryptActive(ctx context.Context, name string) (bool, error) {
	// cryptsetup exits non-zero for inactive mappings, so only a failure to
	// start it is an error
	result, err := i.runner.Probe(ctx, "cryptsetup", "status", name)
	if err != nil {
		return false, fmt.Errorf("failed to query crypt status of %s: %w", name, err)
	}
	if err := system.CheckPrivilegeOutput(result.Combined()); err != nil {
		return false, err
	}
	return !system.CryptStatusInactive(result.Stdout, name), nil
}

// Mounted reports whether deviceOrDir is the source or the mount point of
// any entry in the live mount table
func (i *SystemInspector) Mounted(_ context.Context, deviceOrDir string) (bool, error) {
	if deviceOrDir == "" {
		return false, nil
	}
	mountPoint, err := i.MountPoint(deviceOrDir)
	if err != nil {
		return false, err
	}
	return mountPoint != "", nil
}

// InCrypttab reports whether name has an entry in crypttab
func (i *SystemInspector) InCrypttab(name string) (bool, error) {
	return system.FileHasEntry(i.paths.Crypttab, name)
}

// InFstab reports whether device has an entry in fstab
func (i *SystemInspector) InFstab(device string) (bool, error) {
	return system.FileHasEntry(i.paths.Fstab, device)
}

// MountPoint returns where deviceOrDir is mounted, or "" when it is not
func (i *SystemInspector) MountPoint(deviceOrDir string) (string, error) {
	entries, err := system.ReadMounts(i.paths.Mounts)
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		if entry.Device == deviceOrDir || entry.MountPoint == deviceOrDir {
			return entry.MountPoint, nil
		}
	}
	return "", nil
}
