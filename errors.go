package rfscall

import "errors"

// Sentinel errors for the error kinds named by the wire contract. Layers
// above wrap these with fmt.Errorf("...: %w", err) as the error crosses a
// boundary; callers compare with errors.Is.
var (
	// ErrTransportFailure reports a connection refusal, reset, or a peer
	// close/partial-message abandonment mid-transfer.
	ErrTransportFailure = errors.New("rfscall: transport failure")

	// ErrMalformedFrame reports an envelope that could not be parsed
	// (missing ':', non-numeric or out-of-range length). A header whose
	// "\r\n\r\n" separator has not arrived yet is not an error: the framer
	// reports it as "no message yet".
	// The connection is always closed after this error.
	ErrMalformedFrame = errors.New("rfscall: malformed frame")

	// ErrMalformedMessage reports a payload that could not be parsed: a
	// missing header, a slot whose declared size does not match the bytes
	// available, or a declared slot count that the payload does not satisfy.
	// The connection is always closed after this error.
	ErrMalformedMessage = errors.New("rfscall: malformed message")

	// ErrMalformedArgument reports a value that cannot be represented on
	// the wire, such as a directory entry name containing the line
	// terminator. It is synchronous and is never transmitted.
	ErrMalformedArgument = errors.New("rfscall: malformed argument")

	// ErrUnknownOpcode reports a request whose opcode the dispatcher does
	// not recognize. The request is skipped; the connection continues.
	ErrUnknownOpcode = errors.New("rfscall: unknown opcode")
)
