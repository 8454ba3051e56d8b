package volume

import (
	"context"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/nace/disksetup/internal/system"
)

// CryptManager handles opening and closing encrypted mappings
type CryptManager struct {
	runner system.Runner
	stdin  io.Reader
}

// NewCryptManager creates a new crypt manager. stdin is what cryptsetup
// reads a passphrase from; nil means the process stdin.
func NewCryptManager(runner system.Runner, stdin io.Reader) *CryptManager {
	if stdin == nil {
		stdin = os.Stdin
	}
	return &CryptManager{
		runner: runner,
		stdin:  stdin,
	}
}

// Open maps device as name with cryptsetup. Without a keyfile cryptsetup
// prompts for the passphrase.
func (m *CryptManager) Open(ctx context.Context, device, name, keyfile string) error {
	args := []string{"open"}
	if keyfile != "" {
		args = append(args, "--key-file", keyfile)
	}
	args = append(args, device, name)

	if _, err := m.runner.Run(ctx, "cryptsetup", args...); err != nil {
		return system.Wrap(system.KindCrypt, err, "failed to open %s as %s", device, name)
	}
	return nil
}

// Close removes the mapping name with cryptsetup
func (m *CryptManager) Close(ctx context.Context, name string) error {
	if _, err := m.runner.Run(ctx, "cryptsetup", "close", name); err != nil {
		return system.Wrap(system.KindCrypt, err, "failed to close %s", name)
	}
	return nil
}

// StartNamed opens a mapping described by its crypttab entry
func (m *CryptManager) StartNamed(ctx context.Context, name string) error {
	if _, err := m.runner.Run(ctx, "cryptdisks_start", name); err != nil {
		return system.Wrap(system.KindCrypt, err, "failed to start %s from crypttab", name)
	}
	return nil
}

// StopNamed closes a mapping described by its crypttab entry
func (m *CryptManager) StopNamed(ctx context.Context, name string) error {
	if _, err := m.runner.Run(ctx, "cryptdisks_stop", name); err != nil {
		return system.Wrap(system.KindCrypt, err, "failed to stop %s from crypttab", name)
	}
	return nil
}

// InteractiveStdin reports whether a passphrase prompt can reach a user
func (m *CryptManager) InteractiveStdin() bool {
	f, ok := m.stdin.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
