package playground

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shse/playground/commands"
	"github.com/shse/playground/events"
	"github.com/shse/playground/player"
	"github.com/shse/playground/timers"
	"github.com/shse/playground/transport"
	"go.uber.org/zap"
)

const MessageWelcome = "Welcome!"

var (
	ErrUnknownCommand  = errors.New("unknown command")
	ErrMessageRequired = errors.New("message required")
	ErrNotConnected    = errors.New("not connected")
)

// Playground glues the host to the scripts: it turns host callbacks into
// events and owns the players, commands and timers they work with. It is
// driven by a single goroutine.
type Playground struct {
	logger   *zap.Logger
	players  *player.Pool
	events   *events.Target
	commands *commands.Manager
	timers   *timers.Queue
}

func New(logger *zap.Logger, unicast transport.Unicast, clock func() time.Time) *Playground {
	p := &Playground{
		logger,
		player.NewPool(unicast),
		events.NewTarget(),
		commands.NewManager(),
		timers.NewQueue(logger, clock),
	}

	p.commands.Bind(p.events, p.players)

	p.events.AddEventListener(events.PlayerConnect, p.announceJoin)
	p.events.AddEventListener(events.PlayerDisconnect, p.announceLeave)

	p.registerCommands()

	return p
}

func (p *Playground) Events() *events.Target {
	return p.events
}

func (p *Playground) Commands() *commands.Manager {
	return p.commands
}

func (p *Playground) Timers() *timers.Queue {
	return p.timers
}

func (p *Playground) Players() *player.Pool {
	return p.players
}

func (p *Playground) Collectors() []prometheus.Collector {
	return p.timers.Collectors()
}

func (p *Playground) Connected(clientId int) {
	joined := p.players.Add(player.ID(clientId))
	joined.SendMessage(MessageWelcome)

	p.events.Dispatch(&events.Event{Type: events.PlayerConnect, PlayerID: joined.ID()})
}

func (p *Playground) Disconnected(clientId int) {
	id := player.ID(clientId)

	if _, found := p.players.Get(id); !found {
		return
	}

	p.events.Dispatch(&events.Event{Type: events.PlayerDisconnect, PlayerID: id})

	p.timers.CancelOwner(clientId)
	p.players.Remove(id)
}

// CommandText dispatches a line a player typed. Lines that no listener
// handled are chat messages unless they look like a command.
func (p *Playground) CommandText(command transport.Command) error {
	sender, found := p.players.Get(player.ID(command.ClientId))

	if !found {
		return ErrNotConnected
	}

	event := &events.Event{
		Type:        events.PlayerCommandText,
		PlayerID:    sender.ID(),
		CommandText: command.Text,
	}

	if p.events.Dispatch(event) {
		return event.Err
	}

	if strings.HasPrefix(command.Text, "/") {
		return ErrUnknownCommand
	}

	p.chat(sender, command.Text)

	return nil
}

func (p *Playground) Frame(now time.Time) {
	p.timers.Run(now)
}

func (p *Playground) chat(sender *player.Player, text string) {
	p.players.Broadcast(fmt.Sprintf("%s: %s", sender, text))
}

func (p *Playground) announceJoin(event *events.Event) {
	name, err := player.New(event.PlayerID, p.players).Name()

	if err != nil {
		p.logger.Error("Failed to announce player", zap.Int("player", int(event.PlayerID)), zap.Error(err))
		return
	}

	p.logger.Info(name+" joined!", zap.Int("player", int(event.PlayerID)))
	p.players.Broadcast(name + " joined!")
}

func (p *Playground) announceLeave(event *events.Event) {
	name, err := player.New(event.PlayerID, p.players).Name()

	if err != nil {
		return
	}

	p.logger.Info(name+" left", zap.Int("player", int(event.PlayerID)))

	for _, id := range p.players.IDs() {
		if id != event.PlayerID {
			p.players.SendClientMessage(id, name+" left")
		}
	}
}
