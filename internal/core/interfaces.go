package core

// Frame is a single marshaled protocol message.
type Frame []byte

// Conn abstracts the gateway-owned transport endpoint.
// Owned by the adapter; the adapter must Close() it.
type Conn interface {
	TrySend(Frame) error
	// CloseEvicted signals a normal closure to the peer before teardown.
	// Used when a second auth for the same user replaces this connection.
	CloseEvicted()
	Close()
}
