package player

import (
	"fmt"
	"sort"
)

// Unicast delivers a message to a single connected client.
type Unicast interface {
	SendTo(int, string)
}

type state struct {
	name     string
	position Position
}

// Pool keeps the state of connected players and implements Natives on top of
// it. Names are unique across the pool.
type Pool struct {
	players map[ID]*state
	unicast Unicast
}

func NewPool(unicast Unicast) *Pool {
	return &Pool{
		make(map[ID]*state, 128),
		unicast,
	}
}

// Add registers a newly connected player under the default name Player<id>.
func (p *Pool) Add(id ID) *Player {
	p.players[id] = &state{name: fmt.Sprintf("Player%d", id)}
	return New(id, p)
}

func (p *Pool) Remove(id ID) {
	delete(p.players, id)
}

func (p *Pool) Get(id ID) (*Player, bool) {
	if _, found := p.players[id]; !found {
		return nil, false
	}

	return New(id, p), true
}

// IDs returns the ids of all connected players in ascending order.
func (p *Pool) IDs() []ID {
	ids := make([]ID, 0, len(p.players))

	for id := range p.players {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}

func (p *Pool) Count() int {
	return len(p.players)
}

func (p *Pool) Broadcast(message string) {
	for _, id := range p.IDs() {
		p.unicast.SendTo(int(id), message)
	}
}

func (p *Pool) PlayerName(id ID) (string, error) {
	s, found := p.players[id]

	if !found {
		return "", ErrUnknownPlayer
	}

	return s.name, nil
}

func (p *Pool) SetPlayerName(id ID, name string) error {
	if name == "" {
		return ErrNameRequired
	}

	s, found := p.players[id]

	if !found {
		return ErrUnknownPlayer
	}

	for otherID, other := range p.players {
		if otherID != id && other.name == name {
			return ErrNameNotUnique
		}
	}

	s.name = name

	return nil
}

func (p *Pool) PlayerPosition(id ID) (Position, error) {
	s, found := p.players[id]

	if !found {
		return Position{}, ErrUnknownPlayer
	}

	return s.position, nil
}

func (p *Pool) SetPlayerPosition(id ID, position Position) error {
	s, found := p.players[id]

	if !found {
		return ErrUnknownPlayer
	}

	s.position = position

	return nil
}

func (p *Pool) SendClientMessage(id ID, message string) {
	if _, found := p.players[id]; found {
		p.unicast.SendTo(int(id), message)
	}
}
