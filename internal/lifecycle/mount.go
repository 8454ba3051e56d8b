package lifecycle

import (
	"context"

	"github.com/nace/disksetup/internal/system"
	"github.com/nace/disksetup/internal/target"
)

// ApplyMount mounts or unmounts leaf. Leaves without a crypt or mount layer
// are left alone, as are mounts already in the requested state.
func (d *Dispatcher) ApplyMount(ctx context.Context, leaf *target.Leaf, cmd Command) error {
	if !leaf.HasMountLayer() {
		return nil
	}
	log := d.logger.With("target", leaf.ID())

	switch cmd {
	case Start:
		if leaf.Options.Has(target.OptionNoMount) {
			log.Debug("mount: %s has nomount set, skipping", leaf.ID())
			return nil
		}

		device := leaf.MountDevice()
		if device == "" {
			return system.ConfigErrorf("cannot mount %s, no device defined", leaf.ID())
		}
		mounted, err := d.inspector.Mounted(ctx, device)
		if err != nil {
			return system.Wrap(system.KindMount, err, "failed to inspect mounts")
		}
		if mounted {
			log.Info("mount: device %s is already mounted, skipping", device)
			return nil
		}

		readonly := leaf.Options.Has(target.OptionReadOnly)
		if dir := leaf.MountDir(); dir != "" {
			return d.mounts.Mount(ctx, device, dir, readonly)
		}
		listed, err := d.inspector.InFstab(device)
		if err != nil {
			return system.Wrap(system.KindMount, err, "failed to read fstab")
		}
		if !listed {
			return system.ConfigErrorf("%s: device %s is not in fstab and no mount dir is defined", leaf.ID(), device)
		}
		return d.mounts.Mount(ctx, device, "", readonly)

	case Stop:
		unmountTarget := leaf.UnmountTarget()
		if unmountTarget == "" {
			log.Info("umount: %s has nothing to unmount, skipping", leaf.ID())
			return nil
		}
		mounted, err := d.inspector.Mounted(ctx, unmountTarget)
		if err != nil {
			return system.Wrap(system.KindMount, err, "failed to inspect mounts")
		}
		if !mounted {
			log.Info("umount: %s is not mounted, skipping", unmountTarget)
			return nil
		}
		return d.mounts.Unmount(ctx, unmountTarget)
	}
	return nil
}
