package playground

import (
	"testing"
	"time"

	"github.com/shse/playground/events"
	"github.com/shse/playground/player"
	"github.com/shse/playground/transport"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type unicastMessage struct {
	clientId int
	message  string
}

type testUnicast struct {
	messages chan unicastMessage
}

func newTestUnicast() testUnicast {
	return testUnicast{
		make(chan unicastMessage, 100),
	}
}

func (u testUnicast) SendTo(clientId int, message string) {
	u.messages <- unicastMessage{clientId, message}
}

func (u testUnicast) waitForMessage(t *testing.T, clientId int, data string) {
	for {
		select {
		case message := <-u.messages:
			if message.clientId == clientId && message.message == data {
				return
			}
		default:
			t.Fatalf("message %q for %d not sent", data, clientId)
		}
	}
}

func (u testUnicast) drain() {
	for {
		select {
		case <-u.messages:
		default:
			return
		}
	}
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func testPlayground() (*Playground, testUnicast, *testClock) {
	u := newTestUnicast()
	clock := &testClock{time.Unix(0, 0)}

	return New(zap.NewNop(), u, clock.Now), u, clock
}

func (p *Playground) sendAndExpectSuccess(t *testing.T, clientId int, text string) {
	assert.Nil(t, p.CommandText(transport.Command{ClientId: clientId, Text: text}))
}

func (p *Playground) sendAndExpectError(t *testing.T, clientId int, text string) (err error) {
	err = p.CommandText(transport.Command{ClientId: clientId, Text: text})
	assert.Error(t, err)
	return
}

func TestSendsGreetingWhenConnected(t *testing.T) {
	p, u, _ := testPlayground()

	p.Connected(1)

	assert.Equal(t, unicastMessage{1, MessageWelcome}, <-u.messages)
}

func TestAnnouncesJoinedPlayers(t *testing.T) {
	p, u, _ := testPlayground()

	p.Connected(1)
	p.Connected(2)

	u.waitForMessage(t, 1, "Player2 joined!")
}

func TestAnnouncesLeavingPlayers(t *testing.T) {
	p, u, _ := testPlayground()

	p.Connected(1)
	p.Connected(2)

	p.sendAndExpectSuccess(t, 1, "/name john")

	p.Disconnected(1)

	u.waitForMessage(t, 2, "john left")
	assert.Equal(t, []player.ID{2}, p.Players().IDs())
}

func TestDisconnectOfUnknownClientIsIgnored(t *testing.T) {
	p, u, _ := testPlayground()

	p.Disconnected(5)

	assert.Len(t, u.messages, 0)
}

func TestBroadcastsChat(t *testing.T) {
	p, u, _ := testPlayground()

	p.Connected(1)
	p.Connected(2)

	p.sendAndExpectSuccess(t, 1, "hello")

	u.waitForMessage(t, 2, "Player1: hello")
}

func TestSay(t *testing.T) {
	p, u, _ := testPlayground()

	p.Connected(1)
	p.Connected(2)

	p.sendAndExpectSuccess(t, 2, "/say hi there")
	u.waitForMessage(t, 1, "Player2: hi there")

	assert.Equal(t, ErrMessageRequired, p.sendAndExpectError(t, 2, "/say"))
}

func TestRename(t *testing.T) {
	p, u, _ := testPlayground()

	p.Connected(1)
	p.Connected(2)

	p.sendAndExpectSuccess(t, 1, "/name john")
	u.waitForMessage(t, 2, "Player1 is now known as john")

	assert.Equal(t, player.ErrNameNotUnique, p.sendAndExpectError(t, 2, "/name john"))
	assert.Equal(t, player.ErrNameRequired, p.sendAndExpectError(t, 2, "/name"))
}

func TestPosition(t *testing.T) {
	p, u, _ := testPlayground()

	p.Connected(1)
	u.drain()

	p.sendAndExpectSuccess(t, 1, "/pos 10 -2.5 3")
	u.waitForMessage(t, 1, "Position: 10.00, -2.50, 3.00")

	p.sendAndExpectSuccess(t, 1, "/pos")
	u.waitForMessage(t, 1, "Position: 10.00, -2.50, 3.00")

	assert.Equal(t, ErrInvalidPosition, p.sendAndExpectError(t, 1, "/pos 1 2"))
	assert.Equal(t, ErrInvalidPosition, p.sendAndExpectError(t, 1, "/pos a b c"))
}

func TestUnknownCommand(t *testing.T) {
	p, _, _ := testPlayground()

	p.Connected(1)

	assert.Equal(t, ErrUnknownCommand, p.sendAndExpectError(t, 1, "/fly"))
}

func TestCommandTextFromUnknownClient(t *testing.T) {
	p, _, _ := testPlayground()

	assert.Equal(t, ErrNotConnected, p.sendAndExpectError(t, 3, "hello"))
}

func TestListCommands(t *testing.T) {
	p, u, _ := testPlayground()

	p.Connected(1)
	p.sendAndExpectSuccess(t, 1, "/commands")

	u.waitForMessage(t, 1, "Commands: /commands, /name, /pos, /remind, /say, /stats")
}

func TestReminderIsDeliveredOnFrame(t *testing.T) {
	p, u, clock := testPlayground()

	p.Connected(1)
	p.sendAndExpectSuccess(t, 1, "/remind 2 drink water")
	u.waitForMessage(t, 1, "Reminder set for 2s")

	p.Frame(clock.now.Add(time.Second))
	assert.Len(t, u.messages, 0)

	p.Frame(clock.now.Add(2 * time.Second))
	u.waitForMessage(t, 1, "Reminder: drink water")
	assert.Equal(t, 0, p.Timers().Pending())
}

func TestRemindersAreDeliveredInDueOrder(t *testing.T) {
	p, u, clock := testPlayground()

	p.Connected(1)
	p.sendAndExpectSuccess(t, 1, "/remind 3 third")
	p.sendAndExpectSuccess(t, 1, "/remind 1 first")
	p.sendAndExpectSuccess(t, 1, "/remind 2 second")
	u.drain()

	p.Frame(clock.now.Add(time.Minute))

	assert.Equal(t, unicastMessage{1, "Reminder: first"}, <-u.messages)
	assert.Equal(t, unicastMessage{1, "Reminder: second"}, <-u.messages)
	assert.Equal(t, unicastMessage{1, "Reminder: third"}, <-u.messages)
}

func TestRemindersAreCancelledOnDisconnect(t *testing.T) {
	p, _, _ := testPlayground()

	p.Connected(1)
	p.Connected(2)

	p.sendAndExpectSuccess(t, 1, "/remind 5 one")
	p.sendAndExpectSuccess(t, 2, "/remind 5 two")

	p.Disconnected(1)

	assert.Equal(t, 0, p.Timers().Owned(1))
	assert.Equal(t, 1, p.Timers().Pending())
}

func TestReminderValidation(t *testing.T) {
	p, _, _ := testPlayground()

	p.Connected(1)

	for _, text := range []string{"/remind", "/remind 5", "/remind soon hi", "/remind -1 hi", "/remind 999999 hi",
		"/remind inf hi", "/remind -inf hi", "/remind NaN hi", "/remind 1e300 hi"} {
		assert.Equal(t, ErrInvalidDelay, p.sendAndExpectError(t, 1, text), text)
	}

	assert.Equal(t, 0, p.Timers().Pending())
}

func TestStats(t *testing.T) {
	p, u, _ := testPlayground()

	p.Connected(1)
	p.sendAndExpectSuccess(t, 1, "/say hi")
	p.sendAndExpectError(t, 1, "/say")
	u.drain()

	p.sendAndExpectSuccess(t, 1, "/stats")

	message := <-u.messages
	assert.Equal(t, 1, message.clientId)
	assert.Contains(t, message.message, "/say: 2 calls, 1 failed")

	u.waitForMessage(t, 1, "Players: 1, timers: 0")
}

func TestScriptListenersCanHandleCommandText(t *testing.T) {
	p, u, _ := testPlayground()

	p.Events().AddEventListener(events.PlayerCommandText, func(event *events.Event) {
		if event.CommandText == "secret" {
			player.New(event.PlayerID, p.Players()).SendMessage("shh")
			event.PreventDefault()
		}
	})

	p.Connected(1)
	p.Connected(2)
	u.drain()

	p.sendAndExpectSuccess(t, 1, "secret")

	assert.Equal(t, unicastMessage{1, "shh"}, <-u.messages)
	assert.Len(t, u.messages, 0)
}

func TestReminderAtMaximumDelay(t *testing.T) {
	p, u, clock := testPlayground()

	p.Connected(1)
	p.sendAndExpectSuccess(t, 1, "/remind 86400 tomorrow")
	u.waitForMessage(t, 1, "Reminder set for 24h0m0s")

	assert.Equal(t, 0, p.Timers().Run(clock.now.Add(time.Hour)))
	assert.Equal(t, 1, p.Timers().Pending())
}
