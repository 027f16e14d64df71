package playground

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shse/playground/commands"
	"github.com/shse/playground/player"
)

var (
	ErrInvalidPosition = errors.New("usage: /pos [x y z]")
	ErrInvalidDelay    = errors.New("usage: /remind <seconds> <message>")
)

const maxReminderDelay = 24 * time.Hour

func (p *Playground) registerCommands() {
	builtin := map[string]commands.Handler{
		"commands": p.listCommands,
		"name":     p.rename,
		"pos":      p.position,
		"remind":   p.remind,
		"say":      p.say,
		"stats":    p.stats,
	}

	for name, handler := range builtin {
		if err := p.commands.Register(name, handler); err != nil {
			panic(err)
		}
	}
}

func (p *Playground) listCommands(command *commands.Command) error {
	names := p.commands.Names()

	for i, name := range names {
		names[i] = "/" + name
	}

	command.Player.SendMessage("Commands: " + strings.Join(names, ", "))

	return nil
}

func (p *Playground) rename(command *commands.Command) error {
	args := command.Args()

	if len(args) != 1 {
		return player.ErrNameRequired
	}

	current, err := command.Player.Name()

	if err != nil {
		return err
	}

	if err := command.Player.SetName(args[0]); err != nil {
		return errors.Cause(err)
	}

	p.players.Broadcast(fmt.Sprintf("%s is now known as %s", current, args[0]))

	return nil
}

func (p *Playground) position(command *commands.Command) error {
	args := command.Args()

	switch len(args) {
	case 0:
	case 3:
		var coords [3]float32

		for i, arg := range args {
			value, err := strconv.ParseFloat(arg, 32)

			if err != nil {
				return ErrInvalidPosition
			}

			coords[i] = float32(value)
		}

		if err := command.Player.SetPosition(player.Position{X: coords[0], Y: coords[1], Z: coords[2]}); err != nil {
			return err
		}
	default:
		return ErrInvalidPosition
	}

	position, err := command.Player.Position()

	if err != nil {
		return err
	}

	command.Player.SendMessage("Position: " + position.String())

	return nil
}

func (p *Playground) say(command *commands.Command) error {
	args := command.Args()

	if len(args) < 1 {
		return ErrMessageRequired
	}

	p.chat(command.Player, strings.Join(args, " "))

	return nil
}

// remind sends the player a message after the given number of seconds.
func (p *Playground) remind(command *commands.Command) error {
	args := command.Args()

	if len(args) < 2 {
		return ErrInvalidDelay
	}

	seconds, err := strconv.ParseFloat(args[0], 64)

	if err != nil || math.IsNaN(seconds) || seconds < 0 || seconds > maxReminderDelay.Seconds() {
		return ErrInvalidDelay
	}

	delay := time.Duration(seconds * float64(time.Second))

	id := command.Player.ID()
	message := "Reminder: " + strings.Join(args[1:], " ")

	p.timers.Add(int(id), delay, func() {
		p.players.SendClientMessage(id, message)
	})

	command.Player.SendMessage(fmt.Sprintf("Reminder set for %s", delay))

	return nil
}

func (p *Playground) stats(command *commands.Command) error {
	for _, stat := range p.commands.Stats() {
		if stat.Count == 0 {
			continue
		}

		command.Player.SendMessage(fmt.Sprintf("/%s: %d calls, %d failed, %s mean",
			stat.Name, stat.Count, stat.Failures, time.Duration(stat.Mean).Round(time.Microsecond)))
	}

	command.Player.SendMessage(fmt.Sprintf("Players: %d, timers: %d", p.players.Count(), p.timers.Pending()))

	return nil
}
