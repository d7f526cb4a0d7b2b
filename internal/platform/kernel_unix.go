//go:build unix

package platform

import "golang.org/x/sys/unix"

// kernelRelease returns uname -r.
func kernelRelease() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return ""
	}
	return unix.ByteSliceToString(uts.Release[:])
}
