//go:build !unix

package config

import "os"

type accessMode uint32

const (
	accessRead accessMode = 1 << iota
	accessWrite
	accessSearch
)

// checkAccess only verifies that the path can be opened on platforms
// without access(2).
func checkAccess(path string, mode accessMode) error {
	if mode&accessRead == 0 {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	return f.Close()
}
