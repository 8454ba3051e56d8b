package system

import (
	"strings"

	"golang.org/x/sys/unix"
)

// geteuid is swapped out in tests
var geteuid = unix.Geteuid

// nonRootMarker is printed by cryptsetup when it lacks privileges
const nonRootMarker = "running as non-root user"

// IsRoot checks if running as root
func IsRoot() bool {
	return geteuid() == 0
}

// RequireRoot ensures the program is running as root
func RequireRoot() error {
	if !IsRoot() {
		return PrivilegeErrorf("non-root permissions, try with sudo")
	}
	return nil
}

// CheckPrivilegeOutput reports a privilege error when command output shows
// the command was denied for lack of root
func CheckPrivilegeOutput(output string) error {
	if strings.Contains(output, nonRootMarker) {
		return PrivilegeErrorf("non-root permissions, try with sudo")
	}
	return nil
}
