// Package rfscall implements the RPC transport and marshalling core for a
// remote file-call relay: a client stub forwards a fixed set of
// file-oriented operations to a server process, which executes the real
// syscall and returns the result and errno as if the call had been made
// locally.
//
// Layering, bottom to top:
//
//   - Stream transport (WriteAll / DrainRead / BlockRead) moves raw bytes
//     over a connected net.Conn, tolerating partial reads/writes and
//     surfacing iox.ErrWouldBlock as a control-flow value rather than a
//     blocking stall.
//   - Message framer (SendMessage / ExtractMessage) wraps one payload per
//     message in the wire envelope:
//
//     Message-Length:<decimal-ascii-length>\r\n\r\n<payload bytes>
//
//   - Request/response codec (Request, Response, Slot) marshals a variable
//     number of mixed-type parameters and return values into a
//     self-describing, line-oriented text payload, plus a recursive
//     directory-tree codec (Node).
//   - Handle translator (ToClient / ToServer) maps between the client's
//     and server's file-handle namespaces using a fixed additive offset.
//
// The client and server packages build on top of this core; see
// code.duskforge.dev/rfscall/client and code.duskforge.dev/rfscall/server.
package rfscall
