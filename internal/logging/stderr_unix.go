//go:build !windows

package logging

import (
	"os"

	"golang.org/x/sys/unix"
)

func redirectStderr(to *os.File) (func(), error) {
	fd := int(os.Stderr.Fd())
	saved, err := unix.Dup(fd)
	if err != nil {
		return nil, err
	}
	if err := unix.Dup2(int(to.Fd()), fd); err != nil {
		_ = unix.Close(saved)
		return nil, err
	}

	return func() {
		_ = unix.Dup2(saved, fd)
		_ = unix.Close(saved)
	}, nil
}
