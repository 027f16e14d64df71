package transport

import (
	"bufio"
	"net"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Session is a client connection to a Server. Replies to sent lines are
// reported by Send, every other line the server writes goes to events.
type Session struct {
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer
	input  chan string
	output chan reply
	done   chan error
	events chan<- string
	closed bool
}

type reply struct {
	ok      bool
	message string
}

func NewSession(address string, events chan<- string) (client *Session, err error) {
	var conn net.Conn

	for i := 0; i < 3; i++ {
		conn, err = net.Dial("tcp", address)

		if err != nil {
			time.Sleep(1 * time.Second)
			continue
		}

		break
	}

	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", address)
	}

	client = &Session{
		conn,
		bufio.NewReader(conn),
		bufio.NewWriter(conn),
		make(chan string),
		make(chan reply, 2),
		make(chan error, 2),
		events,
		false,
	}

	go func() {
		for {
			resp, err := client.reader.ReadString('\n')

			if err != nil {
				client.done <- err
				break
			}

			resp = strings.TrimRight(resp, "\r\n")

			if resp == "ok" {
				client.output <- reply{true, ""}
			} else if strings.HasPrefix(resp, "error ") {
				client.output <- reply{false, strings.TrimPrefix(resp, "error ")}
			} else {
				client.events <- resp
			}
		}
	}()

	go func() {
		for message := range client.input {
			if _, err := client.writer.WriteString(message + "\n"); err != nil {
				client.done <- err
				break
			}

			if err := client.writer.Flush(); err != nil {
				client.done <- err
				break
			}
		}
	}()

	return
}

// Send writes a line and waits for the server to acknowledge it. A line the
// server rejected is returned as false together with the server's message.
func (s *Session) Send(text string) (bool, string, error) {
	s.input <- text

	select {
	case resp := <-s.output:
		return resp.ok, resp.message, nil
	case err := <-s.done:
		return false, "", err
	}
}

func (s *Session) SendCommand(name string, args ...string) (bool, error) {
	ok, _, err := s.Send("/" + strings.Join(append([]string{name}, args...), " "))
	return ok, err
}

func (s *Session) Close() {
	if s.closed {
		return
	}

	s.conn.Close()
	close(s.input)
	s.closed = true
}
