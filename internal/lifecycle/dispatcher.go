package lifecycle

import (
	"context"

	"github.com/nace/disksetup/internal/target"
	"github.com/nace/disksetup/internal/ui"
	"github.com/nace/disksetup/internal/volume"
)

// Dispatcher applies start and stop to resolved targets, one leaf at a
// time, stopping at the first error
type Dispatcher struct {
	registry  *target.Registry
	inspector volume.Inspector
	crypt     *volume.CryptManager
	mounts    *volume.MountManager
	logger    *ui.Logger
}

// NewDispatcher creates a new dispatcher
func NewDispatcher(registry *target.Registry, inspector volume.Inspector, crypt *volume.CryptManager, mounts *volume.MountManager, logger *ui.Logger) *Dispatcher {
	if logger == nil {
		logger = ui.Discard()
	}
	return &Dispatcher{
		registry:  registry,
		inspector: inspector,
		crypt:     crypt,
		mounts:    mounts,
		logger:    logger,
	}
}

// Run applies cmd to every leaf reachable from ids, in resolution order.
// No ids means the default target. Every id is resolved before anything
// runs, so a configuration error leaves the system untouched.
func (d *Dispatcher) Run(ctx context.Context, cmd Command, ids []string) error {
	ids = defaultIDs(ids)

	batches := make([][]target.Operation, 0, len(ids))
	for _, id := range ids {
		ops, err := d.registry.Resolve(id)
		if err != nil {
			return err
		}
		batches = append(batches, ops)
	}

	count := 0
	for i, ops := range batches {
		if len(ops) == 0 {
			d.logger.Info("%s resolves to no leaf targets, nothing to do", ids[i])
			continue
		}
		for _, op := range ops {
			if err := d.applyLeaf(ctx, op, cmd); err != nil {
				return err
			}
			count++
		}
	}

	if count > 0 {
		d.logger.Debug("%s finished for %d target(s)", cmd, count)
	}
	return nil
}

func (d *Dispatcher) applyLeaf(ctx context.Context, op target.Operation, cmd Command) error {
	d.logger.Debug("%s %s (via %s)", cmd, op.Leaf.ID(), op.Via())

	if cmd == Stop {
		if err := d.ApplyMount(ctx, op.Leaf, cmd); err != nil {
			return err
		}
		return d.ApplyCrypt(ctx, op.Leaf, cmd)
	}

	if err := d.ApplyCrypt(ctx, op.Leaf, cmd); err != nil {
		return err
	}
	return d.ApplyMount(ctx, op.Leaf, cmd)
}

// Plan resolves ids into the leaf operations Run would process, without
// inspecting or changing anything
func (d *Dispatcher) Plan(ids []string) ([]target.Operation, error) {
	return d.registry.ResolveAll(defaultIDs(ids))
}

// LeafStatus is the observed state of one resolved leaf
type LeafStatus struct {
	ID          string `json:"id"`
	Via         string `json:"via"`
	CryptName   string `json:"crypt_name,omitempty"`
	CryptActive bool   `json:"crypt_active"`
	Device      string `json:"device,omitempty"`
	MountPoint  string `json:"mount_point,omitempty"`
	Mounted     bool   `json:"mounted"`
	Options     string `json:"options,omitempty"`
}

// Status reports the crypt and mount state of every leaf reachable from ids
func (d *Dispatcher) Status(ctx context.Context, ids []string) ([]LeafStatus, error) {
	ops, err := d.Plan(ids)
	if err != nil {
		return nil, err
	}

	statuses := make([]LeafStatus, 0, len(ops))
	for _, op := range ops {
		leaf := op.Leaf
		st := LeafStatus{
			ID:      leaf.ID(),
			Via:     op.Via(),
			Device:  leaf.MountDevice(),
			Options: leaf.Options.String(),
		}

		if leaf.Crypt != nil {
			st.CryptName = leaf.Crypt.Name
			st.CryptActive, err = d.inspector.CryptActive(ctx, leaf.Crypt.Name)
			if err != nil {
				return nil, err
			}
		}

		if probe := leaf.UnmountTarget(); probe != "" {
			st.MountPoint, err = d.inspector.MountPoint(probe)
			if err != nil {
				return nil, err
			}
			st.Mounted = st.MountPoint != ""
		}

		statuses = append(statuses, st)
	}
	return statuses, nil
}

func defaultIDs(ids []string) []string {
	if len(ids) == 0 {
		return []string{target.DefaultTarget}
	}
	return ids
}
