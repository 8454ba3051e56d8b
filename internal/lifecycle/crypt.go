package lifecycle

import (
	"context"

	"github.com/nace/disksetup/internal/system"
	"github.com/nace/disksetup/internal/target"
	"github.com/nace/disksetup/internal/ui"
)

// ApplyCrypt moves the encryption layer of leaf towards the state cmd asks
// for. Nothing runs when the mapping is already in that state.
func (d *Dispatcher) ApplyCrypt(ctx context.Context, leaf *target.Leaf, cmd Command) error {
	spec := leaf.Crypt
	if spec == nil {
		return nil
	}
	log := d.logger.With("target", leaf.ID())

	active, err := d.inspector.CryptActive(ctx, spec.Name)
	if err != nil {
		return err
	}

	switch cmd {
	case Start:
		if active {
			log.Info("crypt: %s is already running, skipping", spec.Name)
			return nil
		}
		return d.openCrypt(ctx, log, leaf.ID(), spec)
	case Stop:
		if !active {
			log.Info("crypt: %s is already stopped, skipping", spec.Name)
			return nil
		}
		if spec.Device == "" {
			return d.crypt.StopNamed(ctx, spec.Name)
		}
		return d.crypt.Close(ctx, spec.Name)
	}
	return nil
}

func (d *Dispatcher) openCrypt(ctx context.Context, log *ui.Logger, id string, spec *target.CryptSpec) error {
	if spec.Device == "" {
		listed, err := d.inspector.InCrypttab(spec.Name)
		if err != nil {
			return system.Wrap(system.KindCrypt, err, "failed to read crypttab")
		}
		if !listed {
			return system.CryptErrorf("%s: crypt name %s is not in crypttab and no device is specified", id, spec.Name)
		}
		return d.crypt.StartNamed(ctx, spec.Name)
	}

	keyfile := ""
	if spec.Keyfile != "" {
		info, err := system.ValidateKeyfilePath(spec.Keyfile)
		if err != nil {
			return system.Wrap(system.KindConfig, err, "%s: invalid keyfile", id)
		}
		if info.Insecure() {
			log.Warning("keyfile %s has insecure permissions %04o, recommended 0600", info.Path, info.Mode)
		}
		keyfile = info.Path
	} else if !d.crypt.InteractiveStdin() {
		log.Warning("crypt: %s needs a passphrase but stdin is not a terminal", spec.Name)
	}

	log.Debug("opening %s as %s", spec.Device, spec.Name)
	return d.crypt.Open(ctx, spec.Device, spec.Name, keyfile)
}
