// Package target models the configured storage targets: leaves that carry
// an encryption layer and/or a mount point, and groups that name other
// targets.
package target

import (
	"path"
	"sort"
	"strings"
)

// Option is a per-leaf behaviour switch
type Option string

const (
	// OptionNoMount skips mounting on start
	OptionNoMount Option = "nomount"
	// OptionReadOnly mounts the device read-only
	OptionReadOnly Option = "ro"
)

// MapperDir is where dm-crypt mappings appear
const MapperDir = "/dev/mapper"

// CryptSpec describes the encryption layer of a leaf
type CryptSpec struct {
	Name    string // mapping name, e.g. data_crypt
	Device  string // backing device; empty means the name is looked up in crypttab
	Keyfile string // optional key file for cryptsetup open
}

// MapperPath returns the device node the open mapping appears as
func (c *CryptSpec) MapperPath() string {
	return path.Join(MapperDir, c.Name)
}

// MountSpec describes where a leaf is mounted
type MountSpec struct {
	Device string // empty means the crypt mapper device
	Dir    string // empty means the device must be listed in fstab
}

// OptionSet is the set of options given to a leaf
type OptionSet map[Option]struct{}

// NewOptionSet builds a set from its members
func NewOptionSet(opts ...Option) OptionSet {
	set := make(OptionSet, len(opts))
	for _, o := range opts {
		set[o] = struct{}{}
	}
	return set
}

// Has reports whether o is set
func (s OptionSet) Has(o Option) bool {
	_, ok := s[o]
	return ok
}

// String lists the options in sorted order, comma separated
func (s OptionSet) String() string {
	names := make([]string, 0, len(s))
	for o := range s {
		names = append(names, string(o))
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

// Definition is either a *Group or a *Leaf
type Definition interface {
	ID() string
	isDefinition()
}

// Group expands to its members, in order
type Group struct {
	id      string
	Members []string
}

// NewGroup creates a group definition
func NewGroup(id string, members ...string) *Group {
	return &Group{id: id, Members: members}
}

func (g *Group) ID() string    { return g.id }
func (g *Group) isDefinition() {}

// Leaf is a target with concrete crypt and mount actions
type Leaf struct {
	id      string
	Crypt   *CryptSpec
	Mount   *MountSpec
	Options OptionSet
}

// NewLeaf creates a leaf definition. Nil specs mean the layer is absent.
func NewLeaf(id string, crypt *CryptSpec, mount *MountSpec, options OptionSet) *Leaf {
	if options == nil {
		options = OptionSet{}
	}
	return &Leaf{id: id, Crypt: crypt, Mount: mount, Options: options}
}

func (l *Leaf) ID() string    { return l.id }
func (l *Leaf) isDefinition() {}

// MountDevice resolves the device to mount: the explicit mount device,
// else the crypt mapper path, else "".
func (l *Leaf) MountDevice() string {
	if l.Mount != nil && l.Mount.Device != "" {
		return l.Mount.Device
	}
	if l.Crypt != nil {
		return l.Crypt.MapperPath()
	}
	return ""
}

// MountDir returns the configured mount directory, if any
func (l *Leaf) MountDir() string {
	if l.Mount != nil {
		return l.Mount.Dir
	}
	return ""
}

// UnmountTarget is what umount is pointed at: the directory when
// configured, else the device
func (l *Leaf) UnmountTarget() string {
	if dir := l.MountDir(); dir != "" {
		return dir
	}
	return l.MountDevice()
}

// HasMountLayer reports whether the leaf takes part in mounting at all
func (l *Leaf) HasMountLayer() bool {
	return l.Mount != nil || l.Crypt != nil
}
