// Package lifecycle drives targets between their stopped and started
// states.
package lifecycle

import (
	"fmt"
	"slices"

	"github.com/nace/disksetup/internal/target"
)

// Command is the requested transition
type Command string

const (
	Start Command = "start"
	Stop  Command = "stop"
)

// ParseCommand converts a command name
func ParseCommand(name string) (Command, error) {
	switch Command(name) {
	case Start, Stop:
		return Command(name), nil
	default:
		return "", fmt.Errorf("unknown command %q (want start or stop)", name)
	}
}

// RequiredCommands lists the system tools cmd may invoke for ops, in first
// use order. The crypt status probe needs cryptsetup even for crypttab
// mappings.
func RequiredCommands(cmd Command, ops []target.Operation) []string {
	var tools []string
	need := func(names ...string) {
		for _, name := range names {
			if !slices.Contains(tools, name) {
				tools = append(tools, name)
			}
		}
	}

	for _, op := range ops {
		leaf := op.Leaf
		if cmd == Stop && leaf.HasMountLayer() {
			need("sync", "umount")
		}
		if leaf.Crypt != nil {
			need("cryptsetup")
			if leaf.Crypt.Device == "" {
				need("cryptdisks_" + string(cmd))
			}
		}
		if cmd == Start && leaf.HasMountLayer() && !leaf.Options.Has(target.OptionNoMount) {
			need("mount")
		}
	}
	return tools
}
