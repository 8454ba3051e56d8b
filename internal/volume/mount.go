package volume

import (
	"context"

	"github.com/nace/disksetup/internal/system"
)

// MountManager handles filesystem mount operations
type MountManager struct {
	runner system.Runner
}

// NewMountManager creates a new mount manager
func NewMountManager(runner system.Runner) *MountManager {
	return &MountManager{
		runner: runner,
	}
}

// Mount mounts device on dir. An empty dir lets mount look the device up
// in fstab.
func (m *MountManager) Mount(ctx context.Context, device, dir string, readonly bool) error {
	args := []string{"-v"}
	if readonly {
		args = append(args, "-o", "ro")
	}
	args = append(args, device)
	if dir != "" {
		args = append(args, dir)
	}

	if _, err := m.runner.Run(ctx, "mount", args...); err != nil {
		if dir == "" {
			return system.Wrap(system.KindMount, err, "failed to mount %s", device)
		}
		return system.Wrap(system.KindMount, err, "failed to mount %s on %s", device, dir)
	}
	return nil
}

// Unmount flushes pending writes and unmounts target, a directory or device
func (m *MountManager) Unmount(ctx context.Context, target string) error {
	if _, err := m.runner.Run(ctx, "sync"); err != nil {
		return system.Wrap(system.KindMount, err, "failed to sync before unmounting %s", target)
	}
	if _, err := m.runner.Run(ctx, "umount", "-v", target); err != nil {
		return system.Wrap(system.KindMount, err, "failed to unmount %s", target)
	}
	return nil
}
