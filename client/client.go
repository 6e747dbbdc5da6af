// Package client implements the stub side of the remote file-call relay
// (component C5): for each interposed operation it classifies the call as
// local or remote, and for remote calls builds a request, sends it, awaits
// the response, and translates the result and error back into the shape
// the caller expects.
package client

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"syscall"

	"github.com/sirupsen/logrus"

	"code.duskforge.dev/rfscall"
)

// Client is a session against one server connection. It owns exactly one
// connection and one receive (session) buffer, matching the source's
// global stub state; callers sharing a Client across goroutines get a
// request/response pair serialized end to end by an internal mutex (see
// spec.md §4.5/§5 on thread-safety).
type Client struct {
	conn net.Conn

	mu      sync.Mutex
	recvBuf []byte

	readLimit int
	callOpts  []rfscall.Option

	filesMu    sync.Mutex
	localFiles map[int]*os.File
	nextLocal  int

	log logrus.FieldLogger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger attaches a logger to the Client. No Client method writes to
// it, so the client emits no diagnostics whether or not a logger is set.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) { c.log = log }
}

// WithReadLimit caps the maximum response frame this client will accept.
func WithReadLimit(limit int) Option {
	return func(c *Client) { c.readLimit = limit }
}

// New wraps an already-established connection to the server.
func New(conn net.Conn, opts ...Option) *Client {
	c := &Client{
		conn:       conn,
		localFiles: make(map[int]*os.File),
		nextLocal:  3, // 0,1,2 are reserved for the standard descriptors below
		log:        logrus.StandardLogger(),
	}
	for _, fn := range opts {
		fn(c)
	}
	// Local handles obtained by code paths that never went through
	// interposition (stdin/stdout/stderr) must still resolve through the
	// local shortcut rather than being forwarded to the server.
	c.localFiles[0] = os.Stdin
	c.localFiles[1] = os.Stdout
	c.localFiles[2] = os.Stderr
	return c
}

// Dial connects to the server at addr over TCP and wraps the connection.
func Dial(addr string, opts ...Option) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("rfscall: client: dial: %w", err)
	}
	return New(conn, opts...), nil
}

// RegisterLocal hands the stub an already-open local file under handle fd,
// so that later close/read/write/lseek calls against fd take the local
// shortcut instead of being forwarded to the server. fd must be < rfscall.Offset.
func (c *Client) RegisterLocal(fd int, f *os.File) error {
	if !rfscall.IsLocal(fd) {
		return fmt.Errorf("rfscall: client: RegisterLocal: fd %d is in the remote handle band", fd)
	}
	c.filesMu.Lock()
	defer c.filesMu.Unlock()
	c.localFiles[fd] = f
	return nil
}

// Disconnect closes the underlying connection. Local files registered via
// RegisterLocal or New's standard-descriptor defaults are not closed. This
// is distinct from the Close method, which implements the close(2)-style
// remote/local file-handle operation from spec.md §4.5's table.
func (c *Client) Disconnect() error {
	return c.conn.Close()
}

// call sends req and returns the decoded response, serialized end to end
// against concurrent callers sharing this Client.
func (c *Client) call(req rfscall.Request) (rfscall.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	payload := rfscall.EncodeRequest(req)
	if err := rfscall.SendMessage(c.conn, payload, c.callOpts...); err != nil {
		return rfscall.Response{}, fmt.Errorf("rfscall: client: send: %w", err)
	}
	return c.waitForResponse()
}

// waitForResponse drains the connection into the session buffer and
// repeatedly tries to extract a complete message, the loop structure
// spec.md §4.5 calls "partial-response handling".
func (c *Client) waitForResponse() (rfscall.Response, error) {
	for {
		payload, ok, err := rfscall.ExtractMessage(&c.recvBuf, c.readLimit)
		if err != nil {
			c.conn.Close()
			return rfscall.Response{}, fmt.Errorf("rfscall: client: %w", rfscall.ErrTransportFailure)
		}
		if ok {
			resp, err := rfscall.DecodeResponse(payload)
			if err != nil {
				c.conn.Close()
				return rfscall.Response{}, fmt.Errorf("rfscall: client: %w", rfscall.ErrTransportFailure)
			}
			return resp, nil
		}

		chunk := make([]byte, 64*1024)
		n, peerClosed, rerr := rfscall.BlockRead(c.conn, chunk, c.callOpts...)
		if rerr != nil {
			return rfscall.Response{}, fmt.Errorf("rfscall: client: %w", rfscall.ErrTransportFailure)
		}
		if peerClosed {
			return rfscall.Response{}, rfscall.ErrTransportFailure
		}
		c.recvBuf = append(c.recvBuf, chunk[:n]...)
	}
}

// errnoErr turns a non-zero server errno into a syscall.Errno, the Go
// idiom for an error value that IS a POSIX errno rather than a string
// wrapping one. A zero errno is "no error" and maps to nil.
func errnoErr(errno int64) error {
	if errno == 0 {
		return nil
	}
	return syscall.Errno(errno)
}

// localFile looks up a registered local handle, returning EBADF if none is
// registered (matching the platform's "bad handle" errno for an operation
// on a handle the local process does not recognize).
func (c *Client) localFile(fd int) (*os.File, error) {
	c.filesMu.Lock()
	defer c.filesMu.Unlock()
	f, ok := c.localFiles[fd]
	if !ok {
		return nil, syscall.EBADF
	}
	return f, nil
}

func (c *Client) forgetLocal(fd int) {
	c.filesMu.Lock()
	defer c.filesMu.Unlock()
	delete(c.localFiles, fd)
}

var errShortResponse = errors.New("rfscall: client: short response")
