package lifecycle

import (
	"context"
	"errors"
	"strings"

	"github.com/nace/disksetup/internal/system"
)

// fakeHost is both the command runner and the state inspector. Commands
// passed to Run change the state later inspections observe.
type fakeHost struct {
	calls    []string
	active   map[string]bool
	mounts   map[string]string // device -> dir
	crypttab map[string]bool
	fstab    map[string]string // device -> dir
	fail     map[string]bool
	nonRoot  bool
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		active:   map[string]bool{},
		mounts:   map[string]string{},
		crypttab: map[string]bool{},
		fstab:    map[string]string{},
		fail:     map[string]bool{},
	}
}

func (h *fakeHost) Run(_ context.Context, name string, args ...string) (*system.Result, error) {
	line := strings.Join(append([]string{name}, args...), " ")
	h.calls = append(h.calls, line)
	result := &system.Result{Command: line}
	if h.fail[line] {
		result.ExitCode = 1
		return result, &system.CommandError{Result: result, Err: errors.New("exit status 1")}
	}

	switch name {
	case "cryptsetup":
		switch args[0] {
		case "open":
			h.active[args[len(args)-1]] = true
		case "close":
			h.active[args[1]] = false
		}
	case "cryptdisks_start":
		h.active[args[0]] = true
	case "cryptdisks_stop":
		h.active[args[0]] = false
	case "mount":
		positional := []string{}
		for i := 0; i < len(args); i++ {
			switch args[i] {
			case "-v":
			case "-o":
				i++
			default:
				positional = append(positional, args[i])
			}
		}
		device := positional[0]
		dir := h.fstab[device]
		if len(positional) > 1 {
			dir = positional[1]
		}
		h.mounts[device] = dir
	case "umount":
		target := args[len(args)-1]
		for device, dir := range h.mounts {
			if device == target || dir == target {
				delete(h.mounts, device)
			}
		}
	}
	return result, nil
}

func (h *fakeHost) Probe(_ context.Context, name string, args ...string) (*system.Result, error) {
	return nil, errors.New("fakeHost does not probe")
}

func (h *fakeHost) CryptActive(_ context.Context, name string) (bool, error) {
	if h.nonRoot {
		return false, system.CheckPrivilegeOutput("running as non-root user")
	}
	return h.active[name], nil
}

func (h *fakeHost) Mounted(_ context.Context, deviceOrDir string) (bool, error) {
	mp, _ := h.MountPoint(deviceOrDir)
	return mp != "", nil
}

func (h *fakeHost) MountPoint(deviceOrDir string) (string, error) {
	for device, dir := range h.mounts {
		if device == deviceOrDir || dir == deviceOrDir {
			return dir, nil
		}
	}
	return "", nil
}

func (h *fakeHost) InCrypttab(name string) (bool, error) {
	return h.crypttab[name], nil
}

func (h *fakeHost) InFstab(device string) (bool, error) {
	_, ok := h.fstab[device]
	return ok, nil
}
