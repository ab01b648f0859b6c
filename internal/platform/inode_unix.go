//go:build unix

package platform

import (
	"os"
	"syscall"
)

func statInode(info os.FileInfo) (uint64, bool) {
	if info == nil {
		return 0, false
	}

	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok || st == nil {
		return 0, false
	}

	return uint64(st.Ino), true //nolint:unconvert
}
