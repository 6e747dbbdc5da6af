package server

import (
	"io"
	"os"
	"syscall"

	"code.duskforge.dev/rfscall"
	"code.duskforge.dev/rfscall/internal/localfs"
)

// dispatch executes one decoded request against the real filesystem and
// returns the response to encode and send back. It never returns an error
// itself: every failure becomes a non-zero Errno in the response, per
// spec.md §7's RemoteSyscallError kind.
func (w *worker) dispatch(req rfscall.Request) rfscall.Response {
	switch req.Op {
	case rfscall.OpOpen:
		return w.doOpen(req)
	case rfscall.OpClose:
		return w.doClose(req)
	case rfscall.OpRead:
		return w.doRead(req)
	case rfscall.OpWrite:
		return w.doWrite(req)
	case rfscall.OpLseek:
		return w.doLseek(req)
	case rfscall.OpStat:
		return w.doStat(req)
	case rfscall.OpUnlink:
		return w.doUnlink(req)
	case rfscall.OpGetdirentries:
		return w.doGetdirentries(req)
	case rfscall.OpGetdirtree:
		return w.doGetdirtree(req)
	case rfscall.OpFreedirtree:
		// freedirtree is always local per spec.md's op table; the client
		// never sends it. A request naming it is a protocol violation.
		return errnoResponse(syscall.ENOSYS)
	default:
		// Unreachable: worker.handleMessage filters opcodes outside the
		// stable 0..9 range before calling dispatch.
		return errnoResponse(syscall.ENOSYS)
	}
}

func errnoResponse(errno syscall.Errno) rfscall.Response {
	return rfscall.Response{Err: int64(errno), Returns: []rfscall.Slot{rfscall.IntSlot(-1)}}
}

// syscallErrno extracts the POSIX errno behind an *os.PathError/*os.LinkError
// or a bare syscall.Errno, falling back to EIO for anything else.
func syscallErrno(err error) syscall.Errno {
	type unwrapper interface{ Unwrap() error }
	for {
		if errno, ok := err.(syscall.Errno); ok {
			return errno
		}
		u, ok := err.(unwrapper)
		if !ok {
			return syscall.EIO
		}
		err = u.Unwrap()
	}
}

func (w *worker) doOpen(req rfscall.Request) rfscall.Response {
	if len(req.Params) != 3 {
		return errnoResponse(syscall.EINVAL)
	}
	path := string(req.Params[0])
	flags, err := req.Params[1].Int()
	if err != nil {
		return errnoResponse(syscall.EINVAL)
	}
	mode, err := req.Params[2].Int()
	if err != nil {
		return errnoResponse(syscall.EINVAL)
	}

	f, oerr := os.OpenFile(path, int(flags), os.FileMode(mode))
	if oerr != nil {
		return errnoResponse(syscallErrno(oerr))
	}

	native := w.nextHandle
	w.nextHandle++
	w.handles[native] = f

	return rfscall.Response{
		Returns: []rfscall.Slot{rfscall.IntSlot(int64(rfscall.ToClient(native)))},
	}
}

func (w *worker) doClose(req rfscall.Request) rfscall.Response {
	if len(req.Params) != 1 {
		return errnoResponse(syscall.EINVAL)
	}
	clientHandle, err := req.Params[0].Int()
	if err != nil {
		return errnoResponse(syscall.EINVAL)
	}
	native := rfscall.ToServer(int(clientHandle))

	f, ok := w.handles[native]
	if !ok {
		return errnoResponse(syscall.EBADF)
	}
	if err := f.Close(); err != nil {
		return errnoResponse(syscallErrno(err))
	}
	delete(w.handles, native)
	delete(w.dirCursors, native)

	return rfscall.Response{Returns: []rfscall.Slot{rfscall.IntSlot(0)}}
}

func (w *worker) doRead(req rfscall.Request) rfscall.Response {
	if len(req.Params) != 3 {
		return errnoResponse(syscall.EINVAL)
	}
	clientHandle, err := req.Params[0].Int()
	if err != nil {
		return errnoResponse(syscall.EINVAL)
	}
	count, err := req.Params[2].Int()
	if err != nil || count < 0 {
		return errnoResponse(syscall.EINVAL)
	}
	native := rfscall.ToServer(int(clientHandle))

	f, ok := w.handles[native]
	if !ok {
		return errnoResponse(syscall.EBADF)
	}

	buf := make([]byte, count)
	n, rerr := f.Read(buf)
	if rerr != nil && rerr != io.EOF {
		return errnoResponse(syscallErrno(rerr))
	}

	return rfscall.Response{
		Returns: []rfscall.Slot{rfscall.IntSlot(int64(n)), rfscall.Slot(buf[:n])},
	}
}

func (w *worker) doWrite(req rfscall.Request) rfscall.Response {
	if len(req.Params) != 3 {
		return errnoResponse(syscall.EINVAL)
	}
	clientHandle, err := req.Params[0].Int()
	if err != nil {
		return errnoResponse(syscall.EINVAL)
	}
	count, err := req.Params[2].Int()
	if err != nil || count < 0 {
		return errnoResponse(syscall.EINVAL)
	}
	native := rfscall.ToServer(int(clientHandle))

	f, ok := w.handles[native]
	if !ok {
		return errnoResponse(syscall.EBADF)
	}

	data := req.Params[1]
	if int64(len(data)) > count {
		data = data[:count]
	}
	n, werr := f.Write(data)
	if werr != nil {
		return errnoResponse(syscallErrno(werr))
	}

	return rfscall.Response{Returns: []rfscall.Slot{rfscall.IntSlot(int64(n))}}
}

func (w *worker) doLseek(req rfscall.Request) rfscall.Response {
	if len(req.Params) != 3 {
		return errnoResponse(syscall.EINVAL)
	}
	clientHandle, err := req.Params[0].Int()
	if err != nil {
		return errnoResponse(syscall.EINVAL)
	}
	offset, err := req.Params[1].Int()
	if err != nil {
		return errnoResponse(syscall.EINVAL)
	}
	whence, err := req.Params[2].Int()
	if err != nil {
		return errnoResponse(syscall.EINVAL)
	}
	native := rfscall.ToServer(int(clientHandle))

	f, ok := w.handles[native]
	if !ok {
		return errnoResponse(syscall.EBADF)
	}

	newOffset, serr := f.Seek(offset, int(whence))
	if serr != nil {
		return errnoResponse(syscallErrno(serr))
	}

	return rfscall.Response{Returns: []rfscall.Slot{rfscall.IntSlot(newOffset)}}
}

func (w *worker) doStat(req rfscall.Request) rfscall.Response {
	if len(req.Params) != 1 {
		return errnoResponse(syscall.EINVAL)
	}
	path := string(req.Params[0])

	info, err := os.Stat(path)
	if err != nil {
		return errnoResponse(syscallErrno(err))
	}

	return rfscall.Response{
		Returns: []rfscall.Slot{rfscall.IntSlot(0), localfs.EncodeStatImage(info)},
	}
}

func (w *worker) doUnlink(req rfscall.Request) rfscall.Response {
	if len(req.Params) != 1 {
		return errnoResponse(syscall.EINVAL)
	}
	path := string(req.Params[0])

	if err := os.Remove(path); err != nil {
		return errnoResponse(syscallErrno(err))
	}

	return rfscall.Response{Returns: []rfscall.Slot{rfscall.IntSlot(0)}}
}

// doGetdirentries reuses nbytes as a budget on the number of directory
// entries returned per call (there being no portable equivalent of
// getdirentries(2)'s byte-budget kernel dirent packing — see SPEC_FULL.md's
// platform-dependent-payloads decision) and tracks basep as the number of
// entries already delivered for that handle.
func (w *worker) doGetdirentries(req rfscall.Request) rfscall.Response {
	if len(req.Params) != 3 {
		return errnoResponse(syscall.EINVAL)
	}
	clientHandle, err := req.Params[0].Int()
	if err != nil {
		return errnoResponse(syscall.EINVAL)
	}
	nbytes, err := req.Params[1].Int()
	if err != nil || nbytes <= 0 {
		return errnoResponse(syscall.EINVAL)
	}
	native := rfscall.ToServer(int(clientHandle))

	f, ok := w.handles[native]
	if !ok {
		return errnoResponse(syscall.EBADF)
	}

	limit := int(nbytes)
	if limit > 4096 {
		limit = 4096
	}
	entries, derr := f.ReadDir(limit)
	if derr != nil && derr != io.EOF {
		return errnoResponse(syscallErrno(derr))
	}

	blob := localfs.EncodeDirentries(entries)
	w.dirCursors[native] += len(entries)

	return rfscall.Response{
		Returns: []rfscall.Slot{
			rfscall.IntSlot(int64(len(blob))),
			rfscall.Slot(blob),
			rfscall.IntSlot(int64(w.dirCursors[native])),
		},
	}
}

func (w *worker) doGetdirtree(req rfscall.Request) rfscall.Response {
	if len(req.Params) != 1 {
		return errnoResponse(syscall.EINVAL)
	}
	path := string(req.Params[0])

	tree, err := localfs.BuildTree(path)
	if err != nil {
		return errnoResponse(syscallErrno(err))
	}
	payload, err := rfscall.EncodeTree(tree)
	if err != nil {
		return errnoResponse(syscall.EINVAL)
	}

	return rfscall.Response{Returns: []rfscall.Slot{rfscall.Slot(payload)}}
}
