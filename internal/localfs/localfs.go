// Package localfs backs the server side of getdirtree/stat/getdirentries
// with real filesystem access. It is the concrete stand-in for the source's
// out-of-scope get_local_dirtree/free_local_dirtree helpers, kept behind a
// narrow set of functions so the dispatcher does not depend on its
// internals.
package localfs

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/karrick/godirwalk"

	"code.duskforge.dev/rfscall"
)

// BuildTree walks root and returns the rose tree the getdirtree operation
// serializes back to the caller. Children are sorted by name so the result
// is deterministic across runs on the same directory.
func BuildTree(root string) (*rfscall.Node, error) {
	info, err := os.Lstat(root)
	if err != nil {
		return nil, err
	}
	node := &rfscall.Node{Name: filepath.Base(root)}
	if !info.IsDir() {
		return node, nil
	}

	entries, err := godirwalk.ReadDirents(root, nil)
	if err != nil {
		return nil, fmt.Errorf("rfscall: localfs: readdir %s: %w", root, err)
	}
	entries.Sort()

	for _, ent := range entries {
		child, err := BuildTree(filepath.Join(root, ent.Name()))
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

// statImageLen is the fixed width of the encoded stat image: see
// EncodeStatImage's field layout.
const statImageLen = 8 + 4 + 8 + 4 + 4 + 8 + 8 + 1 + 3 // +3 pad to a multiple of 4

// EncodeStatImage renders fi into the fixed-width, big-endian layout this
// module uses in place of a native struct stat: Size(int64) Mode(uint32)
// ModTimeUnixNano(int64) Uid(uint32) Gid(uint32) Nlink(uint64) Ino(uint64)
// IsDir(uint8) + 3 bytes padding.
func EncodeStatImage(fi os.FileInfo) []byte {
	buf := make([]byte, statImageLen)
	binary.BigEndian.PutUint64(buf[0:8], uint64(fi.Size()))
	binary.BigEndian.PutUint32(buf[8:12], uint32(fi.Mode()))
	binary.BigEndian.PutUint64(buf[12:20], uint64(fi.ModTime().UnixNano()))

	uid, gid, nlink, ino := platformStatFields(fi)
	binary.BigEndian.PutUint32(buf[20:24], uid)
	binary.BigEndian.PutUint32(buf[24:28], gid)
	binary.BigEndian.PutUint64(buf[28:36], nlink)
	binary.BigEndian.PutUint64(buf[36:44], ino)
	if fi.IsDir() {
		buf[44] = 1
	}
	return buf
}

// DirentRecord is one entry of a decoded getdirentries blob.
type DirentRecord struct {
	Name  string
	IsDir bool
}

// EncodeDirentries renders entries as a flat sequence of records: a 2-byte
// big-endian name length, the name bytes, then a 1-byte is-dir flag. This
// replaces the BSD getdirentries(2) kernel dirent layout the source relied
// on, which Go has no portable equivalent for.
func EncodeDirentries(entries []os.DirEntry) []byte {
	var out []byte
	for _, e := range entries {
		name := e.Name()
		hdr := make([]byte, 2)
		binary.BigEndian.PutUint16(hdr, uint16(len(name)))
		out = append(out, hdr...)
		out = append(out, name...)
		if e.IsDir() {
			out = append(out, 1)
		} else {
			out = append(out, 0)
		}
	}
	return out
}

// DecodeDirentries parses a blob produced by EncodeDirentries.
func DecodeDirentries(blob []byte) ([]DirentRecord, error) {
	var recs []DirentRecord
	off := 0
	for off < len(blob) {
		if off+2 > len(blob) {
			return nil, fmt.Errorf("rfscall: localfs: truncated dirent record: %w", rfscall.ErrMalformedMessage)
		}
		nameLen := int(binary.BigEndian.Uint16(blob[off : off+2]))
		off += 2
		if off+nameLen+1 > len(blob) {
			return nil, fmt.Errorf("rfscall: localfs: truncated dirent record: %w", rfscall.ErrMalformedMessage)
		}
		name := string(blob[off : off+nameLen])
		off += nameLen
		isDir := blob[off] != 0
		off++
		recs = append(recs, DirentRecord{Name: name, IsDir: isDir})
	}
	return recs, nil
}
