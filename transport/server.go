package transport

import (
	"bufio"
	"context"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const MessageServerIsShuttingDown = "Server is shutting down"

type client struct {
	id       int
	conn     net.Conn
	messages chan string
	closing  chan struct{}
}

func newClient(id int, conn net.Conn) client {
	return client{id, conn, make(chan string, 8), make(chan struct{}, 1)}
}

func (c client) close() {
	select {
	case c.closing <- struct{}{}:
	default:
	}
}

// send queues message for delivery. It never blocks: when the client is not
// keeping up and its queue is full the message is dropped.
func (c client) send(message string) bool {
	select {
	case c.messages <- message:
		return true
	default:
		return false
	}
}

func (c client) receiveCommands(server *Server) {
	reader := bufio.NewReader(c.conn)

	for {
		text, err := reader.ReadString('\n')

		if err != nil {
			break
		}

		data := strings.TrimSpace(text)

		if data == "" {
			continue
		}

		server.commands <- Command{c.id, data}
	}

	server.disconnected <- c
}

func (c client) deliverMessages() {
	writer := bufio.NewWriter(c.conn)

	for {
		select {
		case <-c.closing:
			// Deliver what was queued before the close was requested.
		draining:
			for {
				select {
				case message := <-c.messages:
					writer.WriteString(message + "\n")
				default:
					break draining
				}
			}

			writer.Flush()
			c.conn.Close()
			return

		case message := <-c.messages:
			writer.WriteString(message + "\n")

		buffering:
			for {
				select {
				case message, ok := <-c.messages:
					if !ok {
						break buffering
					}

					writer.WriteString(message + "\n")
				default:
					break buffering
				}
			}

			writer.Flush()
		}
	}
}

type Server struct {
	closing       chan struct{}
	logger        *zap.Logger
	connections   sync.Map
	count         int
	commands      chan Command
	connected     chan client
	disconnected  chan client
	done          chan struct{}
	metrics       prometheus.Registerer
	frameInterval time.Duration
}

// NewServer creates a host that calls Handler.Frame every frameInterval.
// A zero interval disables frames.
func NewServer(logger *zap.Logger, metrics prometheus.Registerer, frameInterval time.Duration) *Server {
	return &Server{
		make(chan struct{}, 1),
		logger,
		sync.Map{},
		0,
		make(chan Command),
		make(chan client),
		make(chan client),
		make(chan struct{}, 1),
		metrics,
		frameInterval,
	}
}

func (s *Server) Close() {
	s.closing <- struct{}{}
	<-s.done
}

func (s *Server) Run(ctx context.Context, address string, handler Handler) error {
	listener, err := net.Listen("tcp", address)

	if err != nil {
		return err
	}

	s.logger.Info("Server started",
		zap.String("address", address),
		zap.Duration("frame", s.frameInterval))

	var clientCounter = 0

	go s.dispatch(handler)

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()

		if ctx.Err() != nil {
			break
		}

		if err != nil {
			s.logger.Error("Failed to accept connection", zap.Error(err))
			continue
		}

		clientCounter++

		client := newClient(clientCounter, conn)

		s.connected <- client
	}

	listener.Close()
	s.Close()

	s.logger.Info("Shutdown completed")

	return nil
}

func (s *Server) SendTo(clientId int, data string) {
	value, found := s.connections.Load(clientId)

	if found && !value.(client).send(data) {
		s.logger.Warn("Dropped message for slow client", zap.Int("client", clientId))
	}
}

func (s *Server) shutdown() bool {
	if s.count == 0 {
		return false
	}

	select {
	case <-s.commands:
	case <-s.disconnected:
		s.count--

		if s.count == 0 {
			return false
		}
	}
	return true
}

func (s *Server) dispatch(handler Handler) {
	connected := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "connected_players",
		Help: "Number of connected players."})

	commandTime := prometheus.NewSummary(prometheus.SummaryOpts{
		Name: "command_time",
		Help: "Command duration.",
	})

	frameTime := prometheus.NewSummary(prometheus.SummaryOpts{
		Name: "frame_time",
		Help: "Frame duration.",
	})

	s.metrics.MustRegister(connected)
	s.metrics.MustRegister(commandTime)
	s.metrics.MustRegister(frameTime)

	var frames <-chan time.Time

	if s.frameInterval > 0 {
		ticker := time.NewTicker(s.frameInterval)
		defer ticker.Stop()
		frames = ticker.C
	}

	for {
		select {
		case client := <-s.connected:
			s.connections.Store(client.id, client)
			s.count++
			go client.deliverMessages()
			handler.Connected(client.id)
			go client.receiveCommands(s)
			connected.Inc()

		case client := <-s.disconnected:
			s.connections.Delete(client.id)
			s.count--
			handler.Disconnected(client.id)
			client.close()
			connected.Dec()

		case command := <-s.commands:
			started := time.Now()
			err := handler.CommandText(command)

			if err != nil {
				s.logger.Debug("Command failed",
					zap.Int("client", command.ClientId),
					zap.String("text", command.Text),
					zap.Error(err))
				s.SendTo(command.ClientId, "error "+err.Error())
			} else {
				s.SendTo(command.ClientId, "ok")
			}

			commandTime.Observe(time.Since(started).Seconds())

		case now := <-frames:
			handler.Frame(now)
			frameTime.Observe(time.Since(now).Seconds())

		case <-s.closing:
			s.connections.Range(func(key, value interface{}) bool {
				client := value.(client)
				client.send(MessageServerIsShuttingDown)
				client.close()
				return true
			})

			for s.shutdown() {
			}

			s.done <- struct{}{}
			return
		}
	}
}
