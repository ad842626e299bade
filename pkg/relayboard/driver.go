package relayboard

// NumOutputs is the number of relay channels on the board.
const NumOutputs = 4

// Driver abstracts the physical relay board. SetOutput asserts or releases
// a single relay channel. Implementations must be safe for use from a
// single goroutine at a time.
type Driver interface {
	Open() error
	SetOutput(index int, asserted bool) error
	Close() error
}
