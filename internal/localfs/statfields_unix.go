//go:build unix

package localfs

import (
	"os"
	"syscall"
)

// platformStatFields extracts the uid/gid/nlink/ino fields not exposed by
// os.FileInfo directly, the way rclone's local backend reaches into
// Sys().(*syscall.Stat_t) per platform.
func platformStatFields(fi os.FileInfo) (uid, gid uint32, nlink, ino uint64) {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0, 0, 0
	}
	return st.Uid, st.Gid, uint64(st.Nlink), st.Ino
}
