// Package dispatch applies user actions to the local ordered list and
// persists them to a remote store without waiting.
//
// Each action mutates local state first (Add being the exception: it waits
// for the store-assigned ID), then fires the remote call on its own
// goroutine. Remote failures are logged and never rolled back; the local
// list may diverge from the store until the next Reload.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/serbaguna/internal/ordered"
	"github.com/mesh-intelligence/serbaguna/internal/reorder"
	"github.com/mesh-intelligence/serbaguna/pkg/types"
)

// Action names reported by Command.Action and in log fields.
const (
	ActionAdd     = "add"
	ActionToggle  = "toggle"
	ActionDelete  = "delete"
	ActionReorder = "reorder"
	ActionReload  = "reload"
	ActionCompact = "compact"
)

// Options tunes remote calls.
type Options struct {
	// Timeout bounds each remote call. Zero means no bound.
	Timeout time.Duration

	// MaxInFlight limits concurrent position updates of one reorder.
	// Zero or negative means unlimited.
	MaxInFlight int
}

// Dispatcher owns the local ordered list. All local mutations, including
// those triggered by late remote completions, happen under mu.
type Dispatcher struct {
	store  types.ItemStore
	logger *zap.Logger
	opts   Options

	mu   sync.Mutex
	list *ordered.List

	// pending counts spawned commands; idle is closed when it drops to zero.
	pendingMu sync.Mutex
	pending   int
	idle      chan struct{}
}

// New creates a Dispatcher with an empty list. Call Reload to hydrate it.
func New(store types.ItemStore, logger *zap.Logger, opts Options) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		store:  store,
		logger: logger,
		opts:   opts,
		list:   ordered.New(nil),
	}
}

// Items returns a snapshot of the local list in render order.
func (d *Dispatcher) Items() []types.Item {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.list.Items()
}

// Get returns the local copy of the item with the given ID.
func (d *Dispatcher) Get(id string) (types.Item, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.list.Get(id)
}

// Add creates an item remotely and inserts it at the head once the store
// has assigned its ID. Blank text is rejected without a remote call.
func (d *Dispatcher) Add(ctx context.Context, text string) *Command {
	text = strings.TrimSpace(text)
	if text == "" {
		return settled(ActionAdd, types.ErrEmptyText)
	}

	return d.spawn(ctx, ActionAdd, func(ctx context.Context) error {
		callCtx, cancel := d.callContext(ctx)
		defer cancel()
		item, err := d.store.Create(callCtx, types.ItemFields{Text: text, Completed: false})
		if err != nil {
			d.logFailure(ActionAdd, "", err)
			return err
		}
		if err := item.Validate(); err != nil {
			err = fmt.Errorf("create returned %+v: %w", item, err)
			d.logFailure(ActionAdd, item.ID, err)
			return err
		}

		d.mu.Lock()
		d.list.InsertAtHead(item)
		d.mu.Unlock()

		d.logger.Debug("item added", zap.String("id", item.ID), zap.Int("position", item.Position))
		return nil
	})
}

// Toggle flips the completed flag locally and persists the new value.
// An ID absent from the local list is a silent no-op.
func (d *Dispatcher) Toggle(ctx context.Context, id string) *Command {
	d.mu.Lock()
	item, ok := d.list.Get(id)
	if !ok {
		d.mu.Unlock()
		d.logger.Debug("toggle of unknown item ignored", zap.String("id", id))
		return settled(ActionToggle, nil)
	}
	newVal := !item.Completed
	d.list.UpdateByID(id, types.CompletedPatch(newVal))
	d.mu.Unlock()

	return d.persistCompleted(ctx, id, newVal)
}

// SetCompleted sets the completed flag to v locally and persists it.
// An ID absent from the local list is a silent no-op.
func (d *Dispatcher) SetCompleted(ctx context.Context, id string, v bool) *Command {
	d.mu.Lock()
	ok := d.list.UpdateByID(id, types.CompletedPatch(v))
	d.mu.Unlock()
	if !ok {
		d.logger.Debug("toggle of unknown item ignored", zap.String("id", id))
		return settled(ActionToggle, nil)
	}
	return d.persistCompleted(ctx, id, v)
}

func (d *Dispatcher) persistCompleted(ctx context.Context, id string, v bool) *Command {
	return d.spawn(ctx, ActionToggle, func(ctx context.Context) error {
		callCtx, cancel := d.callContext(ctx)
		defer cancel()
		if err := d.store.Update(callCtx, id, types.CompletedPatch(v)); err != nil {
			d.logFailure(ActionToggle, id, err)
			return err
		}
		return nil
	})
}

// Delete removes the item locally and remotely. Remaining positions are
// not compacted. An ID absent from the local list is a silent no-op.
func (d *Dispatcher) Delete(ctx context.Context, id string) *Command {
	if id == "" {
		return settled(ActionDelete, types.ErrInvalidID)
	}

	d.mu.Lock()
	ok := d.list.RemoveByID(id)
	d.mu.Unlock()
	if !ok {
		d.logger.Debug("delete of unknown item ignored", zap.String("id", id))
		return settled(ActionDelete, nil)
	}

	return d.spawn(ctx, ActionDelete, func(ctx context.Context) error {
		callCtx, cancel := d.callContext(ctx)
		defer cancel()
		if err := d.store.Remove(callCtx, id); err != nil {
			d.logFailure(ActionDelete, id, err)
			return err
		}
		return nil
	})
}

// Reorder moves sourceID to the slot of destID, renumbers every item, and
// issues one position update per item. Equal or unknown IDs are a no-op.
func (d *Dispatcher) Reorder(ctx context.Context, sourceID, destID string) *Command {
	d.mu.Lock()
	next, moved := reorder.Move(d.list.Items(), sourceID, destID)
	if !moved {
		d.mu.Unlock()
		return settled(ActionReorder, nil)
	}
	d.list.ReplaceAll(next)
	d.mu.Unlock()

	return d.spawn(ctx, ActionReorder, func(ctx context.Context) error {
		return d.persistPositions(ctx, ActionReorder, next)
	})
}

// OnReorderGesture is the callback handed to the gesture layer. The
// returned command is deliberately dropped.
func (d *Dispatcher) OnReorderGesture(sourceID, destID string) {
	_ = d.Reorder(context.Background(), sourceID, destID)
}

// Compact closes the position gaps left by deletes. It only runs when
// asked; deletes never trigger it.
func (d *Dispatcher) Compact(ctx context.Context) *Command {
	d.mu.Lock()
	current := d.list.Items()
	if reorder.IsDense(current) {
		d.mu.Unlock()
		return settled(ActionCompact, nil)
	}
	next := reorder.Compact(current)
	d.list.ReplaceAll(next)
	d.mu.Unlock()

	var changed []types.Item
	for i := range next {
		if next[i].Position != current[i].Position {
			changed = append(changed, next[i])
		}
	}

	return d.spawn(ctx, ActionCompact, func(ctx context.Context) error {
		return d.persistPositions(ctx, ActionCompact, changed)
	})
}

// Reload fetches the authoritative list and overwrites local state with it.
// On failure local state is kept.
func (d *Dispatcher) Reload(ctx context.Context) *Command {
	return d.spawn(ctx, ActionReload, func(ctx context.Context) error {
		callCtx, cancel := d.callContext(ctx)
		defer cancel()
		rows, err := d.store.ListOrderedByPosition(callCtx)
		if err != nil {
			d.logFailure(ActionReload, "", err)
			return err
		}

		valid := make([]types.Item, 0, len(rows))
		for _, row := range rows {
			if err := row.Validate(); err != nil {
				d.logger.Warn("dropping malformed row", zap.Any("row", row))
				continue
			}
			valid = append(valid, row)
		}
		slices.SortStableFunc(valid, func(a, b types.Item) int { return a.Position - b.Position })

		d.mu.Lock()
		d.list.ReplaceAll(valid)
		d.mu.Unlock()

		d.logger.Debug("list reloaded", zap.Int("items", len(valid)))
		return nil
	})
}

// Drain waits until no dispatched command is in flight or ctx ends.
// Actions may keep arriving while Drain waits; it returns the first time
// the in-flight count reaches zero.
func (d *Dispatcher) Drain(ctx context.Context) error {
	d.pendingMu.Lock()
	if d.pending == 0 {
		d.pendingMu.Unlock()
		return nil
	}
	idle := d.idle
	d.pendingMu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) begin() {
	d.pendingMu.Lock()
	defer d.pendingMu.Unlock()
	if d.pending == 0 {
		d.idle = make(chan struct{})
	}
	d.pending++
}

func (d *Dispatcher) end() {
	d.pendingMu.Lock()
	defer d.pendingMu.Unlock()
	d.pending--
	if d.pending == 0 {
		close(d.idle)
	}
}

// persistPositions writes each item's position without waiting for one
// update before starting the next. Failures do not stop the others.
func (d *Dispatcher) persistPositions(ctx context.Context, action string, items []types.Item) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs error
	)
	if d.opts.MaxInFlight > 0 {
		g.SetLimit(d.opts.MaxInFlight)
	}
	for _, item := range items {
		g.Go(func() error {
			callCtx, cancel := d.callContext(ctx)
			defer cancel()
			if err := d.store.Update(callCtx, item.ID, types.PositionPatch(item.Position)); err != nil {
				d.logFailure(action, item.ID, err)
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("position of %s: %w", item.ID, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errs
}

// spawn runs fn on its own goroutine. The caller's cancellation is dropped:
// a dispatched action cannot be cancelled. fn bounds each remote call with
// callContext.
func (d *Dispatcher) spawn(ctx context.Context, action string, fn func(ctx context.Context) error) *Command {
	cmd := newCommand(action)
	base := context.WithoutCancel(ctx)

	d.begin()
	go func() {
		defer d.end()
		cmd.finish(fn(base))
	}()
	return cmd
}

func (d *Dispatcher) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.opts.Timeout > 0 {
		return context.WithTimeout(ctx, d.opts.Timeout)
	}
	return context.WithCancel(ctx)
}

func (d *Dispatcher) logFailure(action, id string, err error) {
	fields := []zap.Field{zap.String("action", action), zap.Error(err)}
	if id != "" {
		fields = append(fields, zap.String("id", id))
	}
	if errors.Is(err, types.ErrNotFound) {
		d.logger.Info("remote target missing", fields...)
		return
	}
	d.logger.Error("remote call failed", fields...)
}
