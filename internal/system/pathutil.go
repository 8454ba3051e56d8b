package system

import (
	"fmt"
	"os"
	"path/filepath"
)

// KeyfileInfo describes a validated keyfile
type KeyfileInfo struct {
	Path string      // canonical absolute path
	Mode os.FileMode // permission bits
}

// Insecure reports whether the keyfile is readable by group or others
func (k KeyfileInfo) Insecure() bool {
	return k.Mode&0044 != 0
}

// ValidateKeyfilePath validates and resolves a keyfile path, checking for
// symlinks and incorrect file types. Permissions are returned for the
// caller to warn about rather than rejected.
func ValidateKeyfilePath(path string) (KeyfileInfo, error) {
	// Resolve symlinks to canonical path
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		if os.IsNotExist(err) {
			return KeyfileInfo{}, fmt.Errorf("keyfile not found: %s", path)
		}
		return KeyfileInfo{}, fmt.Errorf("failed to resolve keyfile path: %w", err)
	}

	resolved, err = filepath.Abs(filepath.Clean(resolved))
	if err != nil {
		return KeyfileInfo{}, fmt.Errorf("failed to resolve keyfile path: %w", err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return KeyfileInfo{}, fmt.Errorf("keyfile not accessible: %w", err)
	}

	// Verify it's a regular file (not directory, device, socket, etc.)
	if !info.Mode().IsRegular() {
		return KeyfileInfo{}, fmt.Errorf("keyfile must be a regular file, not a directory or device: %s", resolved)
	}

	return KeyfileInfo{Path: resolved, Mode: info.Mode().Perm()}, nil
}
