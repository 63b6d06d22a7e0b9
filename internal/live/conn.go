package live

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// CloseReason records why a connection was closed.
type CloseReason string

const (
	ReasonClientGone       CloseReason = "client_gone"
	ReasonSuperseded       CloseReason = "superseded"
	ReasonOverflow         CloseReason = "overflow"
	ReasonHeartbeatTimeout CloseReason = "heartbeat_timeout"
	ReasonWriteError       CloseReason = "write_error"
	ReasonShutdown         CloseReason = "shutdown"
)

// FrameWriter writes frames to the underlying transport. WriteMessage is only
// ever called from the connection's writer goroutine.
type FrameWriter interface {
	WriteMessage(msg Message) error
	Close() error
}

// frame is one queued outbound message. written, when set, receives the
// result of the transport write.
type frame struct {
	msg     Message
	written chan error
}

// Conn is one live channel to a client. Outbound frames go through a bounded
// buffer drained by a single writer goroutine; a full buffer disconnects the
// client instead of blocking the sender.
type Conn struct {
	id          string
	username    string
	writer      FrameWriter
	outbound    chan frame
	connectedAt time.Time

	lastHeartbeat atomic.Int64

	closeOnce sync.Once
	done      chan struct{}
	reason    atomic.Value
	onClose   func(*Conn, CloseReason)
}

func NewConn(username string, w FrameWriter, bufferSize int, now time.Time) *Conn {
	if bufferSize <= 0 {
		bufferSize = 1
	}

	c := &Conn{
		id:          uuid.NewString(),
		username:    username,
		writer:      w,
		outbound:    make(chan frame, bufferSize),
		connectedAt: now,
		done:        make(chan struct{}),
	}
	c.lastHeartbeat.Store(now.UnixNano())

	return c
}

func (c *Conn) ID() string             { return c.id }
func (c *Conn) Username() string       { return c.username }
func (c *Conn) ConnectedAt() time.Time { return c.connectedAt }
func (c *Conn) Done() <-chan struct{}  { return c.done }

func (c *Conn) Touch(now time.Time) {
	c.lastHeartbeat.Store(now.UnixNano())
}

func (c *Conn) LastHeartbeat() time.Time {
	return time.Unix(0, c.lastHeartbeat.Load())
}

// Start launches the writer goroutine.
func (c *Conn) Start() {
	go c.writeLoop()
}

// Enqueue hands msg to the writer without blocking.
func (c *Conn) Enqueue(msg Message) error {
	return c.enqueue(frame{msg: msg})
}

// Send queues msg and waits until the writer has written it to the
// transport. Frames still buffered when the connection closes report
// ErrConnClosed.
func (c *Conn) Send(ctx context.Context, msg Message) error {
	written := make(chan error, 1)
	if err := c.enqueue(frame{msg: msg, written: written}); err != nil {
		return err
	}

	select {
	case err := <-written:
		return err
	case <-c.done:
		select {
		case err := <-written:
			return err
		default:
			return ErrConnClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Conn) enqueue(f frame) error {
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}

	select {
	case c.outbound <- f:
		return nil
	default:
		slog.Warn("live outbound buffer full, disconnecting client",
			slog.String("event", "live.outbound.overflow"),
			slog.String("username", c.username),
			slog.String("conn_id", c.id),
		)
		c.Close(ReasonOverflow)
		return ErrOutboundFull
	}
}

// Supersede tells the client it was replaced and closes after the notice is written.
func (c *Conn) Supersede(now time.Time) {
	select {
	case c.outbound <- frame{msg: Message{Type: MessageSuperseded, Timestamp: now}}:
	default:
		c.Close(ReasonSuperseded)
	}
}

func (c *Conn) Close(reason CloseReason) {
	c.closeOnce.Do(func() {
		c.reason.Store(reason)
		close(c.done)
		if err := c.writer.Close(); err != nil {
			slog.Debug("live transport close error",
				slog.String("conn_id", c.id),
				slog.String("error", err.Error()),
			)
		}
		if c.onClose != nil {
			c.onClose(c, reason)
		}
	})
}

func (c *Conn) CloseReason() CloseReason {
	r, _ := c.reason.Load().(CloseReason)
	return r
}

func (c *Conn) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case f := <-c.outbound:
			err := c.writer.WriteMessage(f.msg)
			if f.written != nil {
				f.written <- err
			}
			if err != nil {
				slog.Debug("live write failed",
					slog.String("username", c.username),
					slog.String("conn_id", c.id),
					slog.String("error", err.Error()),
				)
				c.Close(ReasonWriteError)
				return
			}
			if f.msg.Type == MessageSuperseded {
				c.Close(ReasonSuperseded)
				return
			}
		}
	}
}
