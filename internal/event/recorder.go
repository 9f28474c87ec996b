package event

import (
	"context"
	"time"

	"github.com/nerrad567/smarthome-core/internal/auth"
	"github.com/nerrad567/smarthome-core/internal/device"
)

type actorKey struct{}

// WithActor returns a context whose recorded events are attributed to email.
func WithActor(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, actorKey{}, email)
}

// ActorFrom returns the acting user's email, if any.
func ActorFrom(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(actorKey{}).(string)
	return email, ok && email != ""
}

// Listener is notified after an event is stored.
type Listener interface {
	EventRecorded(ctx context.Context, e Event) error
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(ctx context.Context, e Event) error

// EventRecorded calls f.
func (f ListenerFunc) EventRecorded(ctx context.Context, e Event) error {
	return f(ctx, e)
}

// Recorder builds and stores events on behalf of the services.
type Recorder struct {
	repo      Repository
	listeners []Listener
	logger    Logger
	now       func() time.Time
}

// NewRecorder creates a recorder that writes to repo.
func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo, logger: noopLogger{}, now: time.Now}
}

// SetLogger sets the logger for listener failures.
func (r *Recorder) SetLogger(logger Logger) {
	r.logger = logger
}

// AddListener registers a listener for stored events.
func (r *Recorder) AddListener(l Listener) {
	r.listeners = append(r.listeners, l)
}

// Record stores an event for deviceID (nil for none). The actor comes from
// the context. Listener failures are logged, not returned.
func (r *Recorder) Record(ctx context.Context, deviceID *int64, description string) error {
	e := &Event{
		Time:        r.now().UTC(),
		Description: description,
		Source:      SourceSystem,
	}
	if deviceID != nil {
		e.Device = &device.Device{ID: *deviceID}
	}
	if email, ok := ActorFrom(ctx); ok {
		e.User = &auth.User{Email: email}
		e.Source = SourceManual
	}

	if err := r.repo.Insert(ctx, e); err != nil {
		return err
	}
	r.logger.Debug("event recorded", "event_id", e.ID, "source", e.Source)

	for _, l := range r.listeners {
		if err := l.EventRecorded(ctx, *e); err != nil {
			r.logger.Warn("notifying event listener", "event_id", e.ID, "error", err)
		}
	}
	return nil
}
