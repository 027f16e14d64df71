package commands

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"
	"github.com/shse/playground/events"
	"github.com/shse/playground/player"
)

var (
	ErrAlreadyRegistered = errors.New("command already registered")
	ErrNameRequired      = errors.New("command name required")
)

type Command struct {
	Player    *player.Player
	Arguments []string
}

// Parse splits text into arguments. The text is a command when its first
// argument starts with a slash.
func Parse(p *player.Player, text string) *Command {
	return &Command{p, strings.Fields(text)}
}

func (c *Command) Valid() bool {
	return len(c.Arguments) > 0 && strings.HasPrefix(c.Arguments[0], "/") && len(c.Arguments[0]) > 1
}

// Name returns the command without its slash.
func (c *Command) Name() string {
	if len(c.Arguments) == 0 {
		return ""
	}

	return strings.TrimPrefix(c.Arguments[0], "/")
}

func (c *Command) Args() []string {
	if len(c.Arguments) < 2 {
		return nil
	}

	return c.Arguments[1:]
}

func (c *Command) String() string {
	return strings.Join(c.Arguments, " ")
}

type Handler func(*Command) error

type Stat struct {
	Name     string
	Count    int64
	Failures int64
	Mean     float64
}

type Manager struct {
	commands map[string]Handler
	registry metrics.Registry
}

func NewManager() *Manager {
	return &Manager{
		make(map[string]Handler),
		metrics.NewRegistry(),
	}
}

func (m *Manager) Register(name string, handler Handler) error {
	if name == "" {
		return ErrNameRequired
	}

	if _, exists := m.commands[name]; exists {
		return errors.Wrap(ErrAlreadyRegistered, name)
	}

	m.commands[name] = handler

	return nil
}

// Trigger runs the command contained in text on behalf of p. It returns false
// when text is not a command or no handler is registered for it.
func (m *Manager) Trigger(p *player.Player, text string) (bool, error) {
	command := Parse(p, text)

	if !command.Valid() {
		return false, nil
	}

	handler, exists := m.commands[command.Name()]

	if !exists {
		return false, nil
	}

	var err error

	m.timer(command.Name()).Time(func() {
		err = handler(command)
	})

	if err != nil {
		m.failures(command.Name()).Inc(1)
	}

	return true, err
}

func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.commands))

	for name := range m.commands {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Stats returns invocation statistics for every registered command.
func (m *Manager) Stats() []Stat {
	names := m.Names()
	stats := make([]Stat, 0, len(names))

	for _, name := range names {
		timer := m.timer(name).Snapshot()

		stats = append(stats, Stat{
			name,
			timer.Count(),
			m.failures(name).Count(),
			timer.Mean(),
		})
	}

	return stats
}

// Bind makes the manager handle the command text events dispatched on target.
// Handled events have their default prevented, handler errors are reported
// through Event.Err.
func (m *Manager) Bind(target *events.Target, natives player.Natives) {
	target.AddEventListener(events.PlayerCommandText, func(event *events.Event) {
		handled, err := m.Trigger(player.New(event.PlayerID, natives), event.CommandText)

		if handled {
			event.Err = err
			event.PreventDefault()
		}
	})
}

func (m *Manager) timer(name string) metrics.Timer {
	return metrics.GetOrRegisterTimer("commands."+name+".time", m.registry)
}

func (m *Manager) failures(name string) metrics.Counter {
	return metrics.GetOrRegisterCounter("commands."+name+".failures", m.registry)
}
