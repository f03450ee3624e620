package sessionkit

import (
	"io"

	"github.com/visadesk/sessionkit/internal/event"
)

// Session event types emitted through the dispatcher.
const (
	EventBootstrap      = "bootstrap"
	EventLogin          = "login"
	EventRegister       = "register"
	EventLogout         = "logout"
	EventTeardown       = "teardown"
	EventProfileUpdate  = "profile_update"
	EventPasswordChange = "password_change"
	EventPasswordReset  = "password_reset"
)

// Event is a structured session lifecycle record.
type Event = event.Event

// EventSink receives [Event] values from the session's async dispatcher.
type EventSink = event.Sink

// NoOpSink is an [EventSink] that silently discards all events.
type NoOpSink = event.NoOpSink

// ChannelSink is a buffered channel-based [EventSink].
type ChannelSink = event.ChannelSink

// JSONWriterSink is an [EventSink] that writes JSON-encoded events to an
// [io.Writer], one object per line.
type JSONWriterSink = event.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return event.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return event.NewJSONWriterSink(w)
}
