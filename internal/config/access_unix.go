//go:build unix

package config

import "golang.org/x/sys/unix"

type accessMode uint32

const (
	accessRead   accessMode = unix.R_OK
	accessWrite  accessMode = unix.W_OK
	accessSearch accessMode = unix.X_OK
)

func checkAccess(path string, mode accessMode) error {
	return unix.Access(path, uint32(mode))
}
