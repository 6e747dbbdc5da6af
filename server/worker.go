package server

import (
	"fmt"
	"net"
	"os"

	"github.com/sirupsen/logrus"

	"code.duskforge.dev/rfscall"
)

// worker is one client's dispatch state: its connection, receive buffer,
// and the native file handles it has opened. Nothing here is shared across
// workers.
type worker struct {
	conn    net.Conn
	recvBuf []byte

	handles    map[int]*os.File
	dirCursors map[int]int // native handle -> entries already consumed
	nextHandle int

	log logrus.FieldLogger
}

func newWorker(conn net.Conn, log logrus.FieldLogger) *worker {
	return &worker{
		conn:       conn,
		handles:    make(map[int]*os.File),
		dirCursors: make(map[int]int),
		log:        log,
	}
}

// run implements spec.md §4.6's loop: extract every complete message,
// decode as a request, dispatch, encode the response, send it, then block
// in BlockRead for more bytes.
func (w *worker) run() error {
	buf := make([]byte, 64*1024)
	for {
		for {
			payload, ok, err := rfscall.ExtractMessage(&w.recvBuf, 0)
			if err != nil {
				return fmt.Errorf("rfscall: server: %w", rfscall.ErrMalformedFrame)
			}
			if !ok {
				break
			}
			if err := w.handleMessage(payload); err != nil {
				return err
			}
		}

		n, peerClosed, err := rfscall.BlockRead(w.conn, buf, rfscall.WithBlock())
		if err != nil {
			return fmt.Errorf("rfscall: server: %w", rfscall.ErrTransportFailure)
		}
		if peerClosed {
			return nil
		}
		w.recvBuf = append(w.recvBuf, buf[:n]...)
	}
}

// handleMessage decodes one request, dispatches it, and sends the response.
// A decode failure closes the connection, per spec.md §4.6 step 2.
func (w *worker) handleMessage(payload []byte) error {
	req, err := rfscall.DecodeRequest(payload)
	if err != nil {
		w.log.WithError(err).Warn("malformed request")
		return fmt.Errorf("rfscall: server: %w", rfscall.ErrMalformedMessage)
	}

	if !req.Op.Valid() {
		w.log.WithField("op", int(req.Op)).Warn("unknown opcode, skipping")
		return nil
	}

	resp := w.dispatch(req)

	out := rfscall.EncodeResponse(resp)
	if err := rfscall.SendMessage(w.conn, out); err != nil {
		return fmt.Errorf("rfscall: server: %w", err)
	}
	return nil
}

func (w *worker) close() {
	for _, f := range w.handles {
		f.Close()
	}
	w.conn.Close()
}
