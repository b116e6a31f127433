package dispatch

import (
	"context"
	"sync"
)

// Command is the handle of a dispatched action. The local effect has
// already happened when the caller receives it; the remote effect settles
// later. Callers are free to drop the handle: nothing reconciles local state
// with the outcome, and Wait only reports it.
type Command struct {
	action string
	done   chan struct{}
	once   sync.Once
	err    error
}

func newCommand(action string) *Command {
	return &Command{action: action, done: make(chan struct{})}
}

// settled returns a Command that is already complete.
func settled(action string, err error) *Command {
	c := newCommand(action)
	c.finish(err)
	return c
}

func (c *Command) finish(err error) {
	c.once.Do(func() {
		c.err = err
		close(c.done)
	})
}

// Action names the dispatched action ("add", "toggle", ...).
func (c *Command) Action() string {
	return c.action
}

// Done is closed when the remote effect has settled.
func (c *Command) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the remote effect settles or ctx ends. It returns the
// remote error, if any. Giving up on ctx does not cancel the remote call.
func (c *Command) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the remote error once settled, nil before.
func (c *Command) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}
