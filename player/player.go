package player

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrUnknownPlayer = errors.New("unknown player")
	ErrNameRequired  = errors.New("name required")
	ErrNameNotUnique = errors.New("name is not unique")
)

type ID int

type Position struct {
	X, Y, Z float32
}

func (p Position) String() string {
	return fmt.Sprintf("%.2f, %.2f, %.2f", p.X, p.Y, p.Z)
}

// Natives is the call interface the host provides for player state.
type Natives interface {
	PlayerName(id ID) (string, error)
	SetPlayerName(id ID, name string) error
	PlayerPosition(id ID) (Position, error)
	SetPlayerPosition(id ID, position Position) error
	SendClientMessage(id ID, message string)
}

// Player is a handle to a connected player. It holds no state of its own,
// every accessor goes through the host natives.
type Player struct {
	id      ID
	natives Natives
}

func New(id ID, natives Natives) *Player {
	return &Player{id, natives}
}

func (p *Player) ID() ID {
	return p.id
}

func (p *Player) Name() (string, error) {
	name, err := p.natives.PlayerName(p.id)

	if err != nil {
		return "", errors.Wrapf(err, "player %d", p.id)
	}

	return name, nil
}

func (p *Player) SetName(name string) error {
	if name == "" {
		return ErrNameRequired
	}

	return errors.Wrapf(p.natives.SetPlayerName(p.id, name), "player %d", p.id)
}

func (p *Player) Position() (Position, error) {
	position, err := p.natives.PlayerPosition(p.id)

	if err != nil {
		return Position{}, errors.Wrapf(err, "player %d", p.id)
	}

	return position, nil
}

func (p *Player) SetPosition(position Position) error {
	return errors.Wrapf(p.natives.SetPlayerPosition(p.id, position), "player %d", p.id)
}

func (p *Player) SendMessage(message string) {
	p.natives.SendClientMessage(p.id, message)
}

func (p *Player) String() string {
	name, err := p.Name()

	if err != nil {
		return fmt.Sprintf("player %d", p.id)
	}

	return name
}
