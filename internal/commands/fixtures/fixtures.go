package fixtures

import "github.com/goliatone/go-dgen/internal/commands"

// RecordingRegistry captures registered command handlers.
type RecordingRegistry struct {
	Handlers []any
	Err      error
}

// NewRecordingRegistry constructs an empty registry recorder.
func NewRecordingRegistry() *RecordingRegistry {
	return &RecordingRegistry{
		Handlers: make([]any, 0),
	}
}

// RegisterCommand satisfies commands.CommandRegistry while recording the handler.
func (r *RecordingRegistry) RegisterCommand(handler any) error {
	if r.Err != nil {
		return r.Err
	}
	r.Handlers = append(r.Handlers, handler)
	return nil
}

// RecordingDispatcher captures handlers registered with a dispatcher.
type RecordingDispatcher struct {
	Handlers      []any
	Subscriptions []*RecordingSubscription
	Err           error
}

// NewRecordingDispatcher constructs a dispatcher recorder.
func NewRecordingDispatcher() *RecordingDispatcher {
	return &RecordingDispatcher{
		Handlers:      make([]any, 0),
		Subscriptions: make([]*RecordingSubscription, 0),
	}
}

// RegisterCommand satisfies commands.CommandDispatcher while recording the handler.
func (d *RecordingDispatcher) RegisterCommand(handler any) (commands.CommandSubscription, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	d.Handlers = append(d.Handlers, handler)
	sub := &RecordingSubscription{Handler: handler}
	d.Subscriptions = append(d.Subscriptions, sub)
	return sub, nil
}

// RecordingSubscription tracks unsubscribe calls.
type RecordingSubscription struct {
	Handler      any
	Unsubscribed bool
}

// Unsubscribe marks the subscription as released.
func (s *RecordingSubscription) Unsubscribe() {
	s.Unsubscribed = true
}
