package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-formsync/pkg/surface"
)

// ErrDispatcherStopped is returned for events dispatched after Run returned.
var ErrDispatcherStopped = errors.New("session: dispatcher stopped")

// Event is one user interaction applied to a session.
type Event interface {
	Apply(s *Session) error
}

// Edit replaces the text surface contents and re-parses them. It requires a
// writable surface such as surface.Memory.
type Edit struct {
	Text string
}

func (e Edit) Apply(s *Session) error {
	if err := s.surface.Write(e.Text); err != nil {
		return fmt.Errorf("session: edit: %w", err)
	}
	return s.TextEdited()
}

// Edited reports that the surface already holds new text, as when a watched
// file is saved.
type Edited struct{}

func (Edited) Apply(s *Session) error {
	return s.TextEdited()
}

// Reload restores the initial schema.
type Reload struct{}

func (Reload) Apply(s *Session) error {
	return s.Reload()
}

// Change selects value on radio group Field.
type Change struct {
	Field string
	Value string
}

func (c Change) Apply(s *Session) error {
	return s.Change(c.Field, c.Value)
}

// InspectFunc runs fn on the dispatcher goroutine. Use it to read session state
// consistently with the events around it.
type InspectFunc func(s *Session) error

func (fn InspectFunc) Apply(s *Session) error {
	return fn(s)
}

var (
	_ Event = Edit{}
	_ Event = Edited{}
	_ Event = Reload{}
	_ Event = Change{}
	_ Event = InspectFunc(nil)
)

type request struct {
	event Event
	reply chan error
}

// Dispatcher owns a Session and applies events to it one at a time, in
// arrival order, on a single goroutine.
type Dispatcher struct {
	session  *Session
	logger   *zap.Logger
	requests chan request
	done     chan struct{}
}

// NewDispatcher wraps s. Run must be started before Dispatch is called.
func NewDispatcher(s *Session) *Dispatcher {
	return &Dispatcher{
		session:  s,
		logger:   s.logger,
		requests: make(chan request),
		done:     make(chan struct{}),
	}
}

// Run applies events until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	defer close(d.done)

	for {
		select {
		case <-ctx.Done():
			return nil
		case req := <-d.requests:
			err := req.event.Apply(d.session)
			if err != nil {
				d.logger.Debug("event rejected", zap.String("event", fmt.Sprintf("%T", req.event)), zap.Error(err))
			}
			req.reply <- err
		}
	}
}

// Dispatch applies ev and returns its result. It blocks until the event has
// been applied, ctx is cancelled, or the dispatcher stops.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) error {
	if ev == nil {
		return errors.New("session: event is required")
	}
	req := request{event: ev, reply: make(chan error, 1)}

	select {
	case d.requests <- req:
	case <-d.done:
		return ErrDispatcherStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WatchFile feeds every external save of f to the dispatcher as an Edited
// event. The watch ends with ctx.
func (d *Dispatcher) WatchFile(ctx context.Context, f *surface.File) (*surface.Watch, error) {
	return f.Watch(ctx, func() {
		if err := d.Dispatch(ctx, Edited{}); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Warn("file edit rejected", zap.String("path", f.Path()), zap.Error(err))
		}
	})
}
