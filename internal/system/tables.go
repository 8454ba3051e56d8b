package system

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// MountEntry is one line of the kernel mount table
type MountEntry struct {
	Device     string
	MountPoint string
	Filesystem string
	Options    string
}

// ParseMounts parses /proc/mounts formatted data. Octal escapes used by the
// kernel for whitespace and backslashes are decoded.
func ParseMounts(data []byte) []MountEntry {
	var entries []MountEntry
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		entry := MountEntry{
			Device:     unescapeMountField(fields[0]),
			MountPoint: unescapeMountField(fields[1]),
			Filesystem: fields[2],
		}
		if len(fields) > 3 {
			entry.Options = fields[3]
		}
		entries = append(entries, entry)
	}
	return entries
}

// ReadMounts reads and parses the mount table at path
func ReadMounts(path string) ([]MountEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mount table %s: %w", path, err)
	}
	return ParseMounts(data), nil
}

// unescapeMountField decodes \ooo sequences, e.g. \040 for a space
func unescapeMountField(field string) string {
	if !strings.Contains(field, `\`) {
		return field
	}
	var b strings.Builder
	for i := 0; i < len(field); i++ {
		if field[i] == '\\' && i+4 <= len(field) {
			if v, err := strconv.ParseUint(field[i+1:i+4], 8, 8); err == nil {
				b.WriteByte(byte(v))
				i += 3
				continue
			}
		}
		b.WriteByte(field[i])
	}
	return b.String()
}

// TableHasEntry reports whether any line of a crypttab or fstab formatted
// file starts, after optional leading whitespace, with key followed by
// whitespace
func TableHasEntry(data []byte, key string) bool {
	if key == "" {
		return false
	}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimLeft(scanner.Text(), " \t")
		rest, ok := strings.CutPrefix(line, key)
		if !ok || rest == "" {
			continue
		}
		if rest[0] == ' ' || rest[0] == '\t' {
			return true
		}
	}
	return false
}

// FileHasEntry is TableHasEntry over the file at path. A missing file has
// no entries.
func FileHasEntry(path, key string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return TableHasEntry(data, key), nil
}

// CryptStatusInactive reports whether cryptsetup status output declares the
// named mapping inactive
func CryptStatusInactive(stdout, name string) bool {
	return strings.Contains(stdout, name+" is inactive")
}
