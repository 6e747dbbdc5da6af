package rfscall

// Offset is the fixed additive offset separating the client-visible local
// and remote file-handle bands. Local handles are [0, Offset); remote
// handles are [Offset, +inf). Do not change without a coordinated
// client+server upgrade.
const Offset = 12345

// ToClient maps a server-native handle to the client-visible remote handle.
func ToClient(h int) int { return h + Offset }

// ToServer maps a client-visible remote handle back to the server-native
// handle.
func ToServer(h int) int { return h - Offset }

// IsLocal reports whether h, as seen by the client, names a local handle
// rather than one in the remote band.
func IsLocal(h int) bool { return h < Offset }
