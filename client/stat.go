package client

import (
	"encoding/binary"
	"fmt"
	"time"

	"code.duskforge.dev/rfscall"
)

// StatInfo mirrors the fields of internal/localfs's fixed-width stat image;
// see SPEC_FULL.md's platform-dependent-payloads decision for why this
// module defines its own layout instead of a native struct stat.
type StatInfo struct {
	Size    int64
	Mode    uint32
	ModTime time.Time
	Uid     uint32
	Gid     uint32
	Nlink   uint64
	Ino     uint64
	IsDir   bool
}

const statImageLen = 8 + 4 + 8 + 4 + 4 + 8 + 8 + 1 + 3

func decodeStatImage(b []byte) (StatInfo, error) {
	if len(b) < statImageLen {
		return StatInfo{}, fmt.Errorf("rfscall: client: stat: %w", rfscall.ErrMalformedMessage)
	}
	var info StatInfo
	info.Size = int64(binary.BigEndian.Uint64(b[0:8]))
	info.Mode = binary.BigEndian.Uint32(b[8:12])
	info.ModTime = time.Unix(0, int64(binary.BigEndian.Uint64(b[12:20])))
	info.Uid = binary.BigEndian.Uint32(b[20:24])
	info.Gid = binary.BigEndian.Uint32(b[24:28])
	info.Nlink = binary.BigEndian.Uint64(b[28:36])
	info.Ino = binary.BigEndian.Uint64(b[36:44])
	info.IsDir = b[44] != 0
	return info, nil
}
