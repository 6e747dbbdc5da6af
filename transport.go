package rfscall

import (
	"errors"
	"io"
	"runtime"
	"time"

	"code.hybscloud.com/iox"
)

// These are re-exported so callers do not need to import iox directly,
// the same way the teacher framing library re-exports them.
var (
	// ErrWouldBlock means "no further progress without waiting". It is an
	// expected, non-failure control-flow signal for non-blocking I/O.
	ErrWouldBlock = iox.ErrWouldBlock

	// ErrMore means the current read/write completed partial, expected
	// progress and more is expected from the same ongoing operation.
	ErrMore = iox.ErrMore
)

// waitOnce applies the retry/wait policy for one would-block occurrence.
// It reports whether the caller should retry.
func waitOnce(retryDelay time.Duration) bool {
	if retryDelay < 0 {
		return false
	}
	if retryDelay == 0 {
		runtime.Gosched()
		return true
	}
	time.Sleep(retryDelay)
	return true
}

// WriteAll writes the entire buffer to w, retrying transient interruptions
// (iox.ErrWouldBlock) per the retry policy in opts. It returns the number of
// bytes written; fewer than len(p) indicates the peer or transport failed
// and is never reported alongside a nil error.
func WriteAll(w io.Writer, p []byte, opts ...Option) (int, error) {
	o := resolveOptions(opts...)
	var total int
	for total < len(p) {
		n, err := w.Write(p[total:])
		total += n
		if err != nil {
			if errors.Is(err, ErrWouldBlock) || errors.Is(err, ErrMore) {
				if waitOnce(o.RetryDelay) {
					continue
				}
				return total, err
			}
			return total, wrapTransportErr(err)
		}
	}
	return total, nil
}

// DrainRead reads as much as is immediately available into buf (up to
// len(buf)), intended for use by a non-blocking reader that wants to
// accumulate everything currently pending in one pass. A transient
// would-block is not an error: it stops the drain cleanly and returns the
// bytes read so far. End-of-stream (io.EOF) sets peerClosed=true.
func DrainRead(r io.Reader, buf []byte) (n int, peerClosed bool, err error) {
	for n < len(buf) {
		rn, rerr := r.Read(buf[n:])
		n += rn
		if rerr != nil {
			if errors.Is(rerr, ErrWouldBlock) {
				return n, false, nil
			}
			if rerr == io.EOF {
				return n, true, nil
			}
			return n, false, wrapTransportErr(rerr)
		}
		if rn == 0 {
			// Nothing pending right now and no error: treat as drained.
			return n, false, nil
		}
	}
	return n, false, nil
}

// BlockRead pulls at most len(buf) bytes from r, blocking (per the retry
// policy in opts) until at least one byte is available or the stream ends.
// Semantics otherwise match DrainRead.
func BlockRead(r io.Reader, buf []byte, opts ...Option) (n int, peerClosed bool, err error) {
	o := resolveOptions(opts...)
	for {
		rn, rerr := r.Read(buf)
		if rn > 0 {
			return rn, false, nil
		}
		if rerr != nil {
			if errors.Is(rerr, ErrWouldBlock) {
				if waitOnce(o.RetryDelay) {
					continue
				}
				return 0, false, rerr
			}
			if rerr == io.EOF {
				return 0, true, nil
			}
			return 0, false, wrapTransportErr(rerr)
		}
		// (0, nil): guard against readers that violate the io.Reader
		// contract by returning no progress and no error.
		return 0, false, io.ErrNoProgress
	}
}

func wrapTransportErr(err error) error {
	return &transportError{cause: err}
}

type transportError struct{ cause error }

func (e *transportError) Error() string { return "rfscall: transport failure: " + e.cause.Error() }
func (e *transportError) Unwrap() error { return e.cause }
func (e *transportError) Is(target error) bool {
	return target == ErrTransportFailure
}
