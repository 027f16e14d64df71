package events

import (
	"strings"

	"github.com/shse/playground/player"
)

const (
	PlayerConnect     = "playerconnect"
	PlayerDisconnect  = "playerdisconnect"
	PlayerCommandText = "playercommandtext"
)

// TypeFromCallback converts a host callback name into an event type,
// e.g. OnPlayerConnect becomes playerconnect.
func TypeFromCallback(callback string) string {
	return strings.ToLower(strings.TrimPrefix(callback, "On"))
}

type Event struct {
	Type        string
	PlayerID    player.ID
	CommandText string

	// Err carries the failure of the listener that handled the event.
	Err error

	defaultPrevented bool
}

// PreventDefault tells the host not to run its own handling of the event.
func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

type Listener func(*Event)

// Target keeps the listeners per event type. Listeners run in the order they
// were added.
type Target struct {
	listeners map[string][]Listener
}

func NewTarget() *Target {
	return &Target{make(map[string][]Listener)}
}

func (t *Target) AddEventListener(eventType string, listener Listener) {
	t.listeners[eventType] = append(t.listeners[eventType], listener)
}

func (t *Target) RemoveEventListeners(eventType string) {
	delete(t.listeners, eventType)
}

func (t *Target) HasEventListeners(eventType string) bool {
	return len(t.listeners[eventType]) > 0
}

// Dispatch invokes the listeners for event and reports whether one of them
// prevented the default action.
func (t *Target) Dispatch(event *Event) bool {
	for _, listener := range t.listeners[event.Type] {
		listener(event)
	}

	return event.DefaultPrevented()
}
