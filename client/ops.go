package client

import (
	"fmt"
	"io"
	"syscall"

	"code.duskforge.dev/rfscall"
	"code.duskforge.dev/rfscall/internal/localfs"
)

// Open always goes remote: the source never has a local shortcut for
// creating a new handle. mode is only meaningful when flags has the create
// bit set, but the wire contract always carries all three slots.
func (c *Client) Open(path string, flags int, mode int) (int, error) {
	req := rfscall.Request{
		Op: rfscall.OpOpen,
		Params: []rfscall.Slot{
			rfscall.Slot(path),
			rfscall.IntSlot(int64(flags)),
			rfscall.IntSlot(int64(mode)),
		},
	}
	resp, err := c.call(req)
	if err != nil {
		return -1, err
	}
	if resp.Err != 0 {
		return -1, errnoErr(resp.Err)
	}
	if len(resp.Returns) < 1 {
		return -1, errShortResponse
	}
	handle, err := resp.Returns[0].Int()
	if err != nil {
		return -1, fmt.Errorf("rfscall: client: open: %w", rfscall.ErrTransportFailure)
	}
	return int(handle), nil
}

// Close takes the local shortcut when fd < rfscall.Offset.
func (c *Client) Close(fd int) (int, error) {
	if rfscall.IsLocal(fd) {
		f, err := c.localFile(fd)
		if err != nil {
			return -1, err
		}
		if err := f.Close(); err != nil {
			return -1, translateOSErr(err)
		}
		c.forgetLocal(fd)
		return 0, nil
	}

	req := rfscall.Request{
		Op:     rfscall.OpClose,
		Params: []rfscall.Slot{rfscall.IntSlot(int64(fd))},
	}
	resp, err := c.call(req)
	if err != nil {
		return -1, err
	}
	if resp.Err != 0 {
		return -1, errnoErr(resp.Err)
	}
	return decodeReturnCode(resp)
}

// Read takes the local shortcut when fd < rfscall.Offset.
func (c *Client) Read(fd int, buf []byte, count int) (int, error) {
	if rfscall.IsLocal(fd) {
		f, err := c.localFile(fd)
		if err != nil {
			return -1, err
		}
		n, err := f.Read(buf[:count])
		if err != nil && err.Error() != "EOF" {
			return -1, translateOSErr(err)
		}
		return n, nil
	}

	req := rfscall.Request{
		Op: rfscall.OpRead,
		Params: []rfscall.Slot{
			rfscall.IntSlot(int64(fd)),
			make(rfscall.Slot, count), // capacity placeholder; content not consulted
			rfscall.IntSlot(int64(count)),
		},
	}
	resp, err := c.call(req)
	if err != nil {
		return -1, err
	}
	if resp.Err != 0 {
		return -1, errnoErr(resp.Err)
	}
	if len(resp.Returns) < 2 {
		return -1, errShortResponse
	}
	n, err := resp.Returns[0].Int()
	if err != nil {
		return -1, fmt.Errorf("rfscall: client: read: %w", rfscall.ErrTransportFailure)
	}
	copy(buf, resp.Returns[1])
	return int(n), nil
}

// Write takes the local shortcut when fd < rfscall.Offset.
func (c *Client) Write(fd int, data []byte, count int) (int, error) {
	if rfscall.IsLocal(fd) {
		f, err := c.localFile(fd)
		if err != nil {
			return -1, err
		}
		n, err := f.Write(data[:count])
		if err != nil {
			return -1, translateOSErr(err)
		}
		return n, nil
	}

	req := rfscall.Request{
		Op: rfscall.OpWrite,
		Params: []rfscall.Slot{
			rfscall.IntSlot(int64(fd)),
			rfscall.Slot(data[:count]),
			rfscall.IntSlot(int64(count)),
		},
	}
	resp, err := c.call(req)
	if err != nil {
		return -1, err
	}
	if resp.Err != 0 {
		return -1, errnoErr(resp.Err)
	}
	return decodeReturnCode(resp)
}

// Lseek takes the local shortcut when fd < rfscall.Offset.
func (c *Client) Lseek(fd int, offset int64, whence int) (int64, error) {
	if rfscall.IsLocal(fd) {
		f, err := c.localFile(fd)
		if err != nil {
			return -1, err
		}
		n, err := f.Seek(offset, whence)
		if err != nil {
			return -1, translateOSErr(err)
		}
		return n, nil
	}

	req := rfscall.Request{
		Op: rfscall.OpLseek,
		Params: []rfscall.Slot{
			rfscall.IntSlot(int64(fd)),
			rfscall.IntSlot(offset),
			rfscall.IntSlot(int64(whence)),
		},
	}
	resp, err := c.call(req)
	if err != nil {
		return -1, err
	}
	if resp.Err != 0 {
		return -1, errnoErr(resp.Err)
	}
	if len(resp.Returns) < 1 {
		return -1, errShortResponse
	}
	newOffset, err := resp.Returns[0].Int()
	if err != nil {
		return -1, fmt.Errorf("rfscall: client: lseek: %w", rfscall.ErrTransportFailure)
	}
	return newOffset, nil
}

// Stat has no local shortcut.
func (c *Client) Stat(path string) (StatInfo, error) {
	req := rfscall.Request{
		Op:     rfscall.OpStat,
		Params: []rfscall.Slot{rfscall.Slot(path)},
	}
	resp, err := c.call(req)
	if err != nil {
		return StatInfo{}, err
	}
	if resp.Err != 0 {
		return StatInfo{}, errnoErr(resp.Err)
	}
	if len(resp.Returns) < 2 {
		return StatInfo{}, errShortResponse
	}
	return decodeStatImage(resp.Returns[1])
}

// Unlink has no local shortcut.
func (c *Client) Unlink(path string) (int, error) {
	req := rfscall.Request{
		Op:     rfscall.OpUnlink,
		Params: []rfscall.Slot{rfscall.Slot(path)},
	}
	resp, err := c.call(req)
	if err != nil {
		return -1, err
	}
	if resp.Err != 0 {
		return -1, errnoErr(resp.Err)
	}
	return decodeReturnCode(resp)
}

// Getdirentries takes the local shortcut when fd < rfscall.Offset. basep
// counts directory entries already delivered for fd (see
// internal/localfs's packing, used on both the local and remote paths so
// callers see one blob format regardless of dispatch).
func (c *Client) Getdirentries(fd int, buf []byte, nbytes int, basep *int64) (int, error) {
	if rfscall.IsLocal(fd) {
		f, err := c.localFile(fd)
		if err != nil {
			return -1, err
		}
		limit := nbytes
		if limit > 4096 {
			limit = 4096
		}
		entries, derr := f.ReadDir(limit)
		if derr != nil && derr != io.EOF {
			return -1, translateOSErr(derr)
		}
		blob := localfs.EncodeDirentries(entries)
		copy(buf, blob)
		*basep += int64(len(entries))
		return len(blob), nil
	}

	req := rfscall.Request{
		Op: rfscall.OpGetdirentries,
		Params: []rfscall.Slot{
			rfscall.IntSlot(int64(fd)),
			rfscall.IntSlot(int64(nbytes)),
			rfscall.IntSlot(*basep),
		},
	}
	resp, err := c.call(req)
	if err != nil {
		return -1, err
	}
	if resp.Err != 0 {
		return -1, errnoErr(resp.Err)
	}
	if len(resp.Returns) < 3 {
		return -1, errShortResponse
	}
	n, err := resp.Returns[0].Int()
	if err != nil {
		return -1, fmt.Errorf("rfscall: client: getdirentries: %w", rfscall.ErrTransportFailure)
	}
	newBase, err := resp.Returns[2].Int()
	if err != nil {
		return -1, fmt.Errorf("rfscall: client: getdirentries: %w", rfscall.ErrTransportFailure)
	}
	copy(buf, resp.Returns[1])
	*basep = newBase
	return int(n), nil
}

// Getdirtree has no local shortcut; the serialized tree is decoded here.
func (c *Client) Getdirtree(path string) (*rfscall.Node, error) {
	req := rfscall.Request{
		Op:     rfscall.OpGetdirtree,
		Params: []rfscall.Slot{rfscall.Slot(path)},
	}
	resp, err := c.call(req)
	if err != nil {
		return nil, err
	}
	if resp.Err != 0 {
		return nil, errnoErr(resp.Err)
	}
	if len(resp.Returns) < 1 {
		return nil, errShortResponse
	}
	tree, err := rfscall.DecodeTree(resp.Returns[0])
	if err != nil {
		return nil, fmt.Errorf("rfscall: client: getdirtree: %w", err)
	}
	return tree, nil
}

// FreeDirtree is always local: it releases the stub-side tree returned by
// Getdirtree. Go's garbage collector reclaims an unreferenced tree on its
// own, so this walks and clears child slices mainly for symmetry with the
// source's explicit free and to let callers drop a reference deterministically
// when a tree is retained elsewhere.
func FreeDirtree(tree *rfscall.Node) {
	if tree == nil {
		return
	}
	for _, c := range tree.Children {
		FreeDirtree(c)
	}
	tree.Children = nil
}

func decodeReturnCode(resp rfscall.Response) (int, error) {
	if len(resp.Returns) < 1 {
		return -1, errShortResponse
	}
	v, err := resp.Returns[0].Int()
	if err != nil {
		return -1, fmt.Errorf("rfscall: client: %w", rfscall.ErrTransportFailure)
	}
	return int(v), nil
}

// translateOSErr unwraps a *os.PathError/*os.LinkError down to the
// underlying syscall.Errno where possible, so local and remote failures
// present the same error shape to the caller.
func translateOSErr(err error) error {
	type unwrapper interface{ Unwrap() error }
	for {
		if errno, ok := err.(syscall.Errno); ok {
			return errno
		}
		u, ok := err.(unwrapper)
		if !ok {
			return err
		}
		err = u.Unwrap()
	}
}
