package transport

import "time"

// Command is a line of text received from a client.
type Command struct {
	ClientId int
	Text     string
}

type Unicast interface {
	SendTo(int, string)
}

// Handler receives the host events. All methods are called from a single
// goroutine.
type Handler interface {
	CommandText(Command) error

	Connected(clientId int)
	Disconnected(clientId int)

	// Frame is called on every tick of the server frame.
	Frame(now time.Time)
}
