package relayboard

import (
	"fmt"
	"sync"
)

// TestDriver records relay writes in memory. It backs the mock relay
// configuration and the actor tests.
type TestDriver struct {
	mu       sync.Mutex
	outputs  [NumOutputs]bool
	opened   bool
	failNext error
}

func NewTestDriver() *TestDriver {
	return &TestDriver{}
}

func (d *TestDriver) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failNext != nil {
		err := d.failNext
		d.failNext = nil
		return err
	}
	d.opened = true
	return nil
}

func (d *TestDriver) SetOutput(index int, asserted bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failNext != nil {
		err := d.failNext
		d.failNext = nil
		return err
	}
	if index < 0 || index >= NumOutputs {
		return fmt.Errorf("relay index out of range: %d", index)
	}
	d.outputs[index] = asserted
	return nil
}

func (d *TestDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opened = false
	return nil
}

// Outputs returns a copy of the current relay states.
func (d *TestDriver) Outputs() [NumOutputs]bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.outputs
}

func (d *TestDriver) Opened() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opened
}

// FailNext makes the next driver call return err.
func (d *TestDriver) FailNext(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failNext = err
}
