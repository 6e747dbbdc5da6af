package rfscall

import (
	"bytes"
	"io"
	"strconv"
)

// frameHeaderSep is the separator between the envelope header and the
// payload: "\r\n\r\n".
var frameHeaderSep = []byte("\r\n\r\n")

const frameLengthKey = "Message-Length"

// SendMessage writes one framed message (the envelope wrapping payload) to
// w, via WriteAll so partial writes are retried transparently.
func SendMessage(w io.Writer, payload []byte, opts ...Option) error {
	envelope := make([]byte, 0, len(frameLengthKey)+1+20+4+len(payload))
	envelope = append(envelope, frameLengthKey...)
	envelope = append(envelope, ':')
	envelope = strconv.AppendInt(envelope, int64(len(payload)), 10)
	envelope = append(envelope, frameHeaderSep...)
	envelope = append(envelope, payload...)

	_, err := WriteAll(w, envelope, opts...)
	return err
}

// ExtractMessage scans rxbuf from its start for the header/payload
// separator "\r\n\r\n". If the separator is not yet present, or the buffer
// does not yet hold the full declared payload, it returns (nil, false, nil):
// "no message yet", and rxbuf is left untouched.
//
// Once a complete message is found, ExtractMessage returns a fresh copy of
// the payload, compacts the remainder of *rxbuf to its start, and reports
// ok=true. ExtractMessage is re-entrant: it may be called any number of
// times between reads and consumes complete messages one at a time.
//
// A header that lacks ':' before the separator, a non-numeric length, or a
// length beyond readLimit (when readLimit > 0) yields ErrMalformedFrame.
func ExtractMessage(rxbuf *[]byte, readLimit int) (payload []byte, ok bool, err error) {
	buf := *rxbuf

	sepIdx := bytes.Index(buf, frameHeaderSep)
	if sepIdx < 0 {
		return nil, false, nil
	}

	header := buf[:sepIdx]
	colonIdx := bytes.IndexByte(header, ':')
	if colonIdx < 0 {
		return nil, false, ErrMalformedFrame
	}

	lengthField := header[colonIdx+1:]
	length, perr := strconv.ParseInt(string(lengthField), 10, 64)
	if perr != nil || length < 0 {
		return nil, false, ErrMalformedFrame
	}
	if readLimit > 0 && length > int64(readLimit) {
		return nil, false, ErrMalformedFrame
	}

	payloadStart := sepIdx + len(frameHeaderSep)
	payloadEnd := payloadStart + int(length)
	if len(buf) < payloadEnd {
		// Full payload not yet received.
		return nil, false, nil
	}

	payload = make([]byte, length)
	copy(payload, buf[payloadStart:payloadEnd])

	remaining := len(buf) - payloadEnd
	copy(buf, buf[payloadEnd:])
	*rxbuf = buf[:remaining]

	return payload, true, nil
}
