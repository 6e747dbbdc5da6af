//go:build !unix

package localfs

import "os"

// platformStatFields has no syscall.Stat_t equivalent on non-unix build
// targets; the fields are reported as zero.
func platformStatFields(fi os.FileInfo) (uid, gid uint32, nlink, ino uint64) {
	return 0, 0, 0, 0
}
