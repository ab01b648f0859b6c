//go:build !unix

package platform

import "os"

func statInode(os.FileInfo) (uint64, bool) {
	return 0, false
}
