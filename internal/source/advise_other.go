//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package source

func adviseSequential([]byte) {}
