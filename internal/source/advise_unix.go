//go:build linux || darwin || freebsd || netbsd || openbsd

package source

import "golang.org/x/sys/unix"

// adviseSequential tells the kernel the mapping is read front to back.
// Failure only costs read-ahead, so it is ignored.
func adviseSequential(b []byte) {
	_ = unix.Madvise(b, unix.MADV_SEQUENTIAL)
}
