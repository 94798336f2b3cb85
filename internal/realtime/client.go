// Package realtime owns the single bidirectional connection that keeps an
// open thread view consistent with the server. It is a state machine over
// the connection lifecycle; there is exactly one run loop per client, so two
// simultaneous reconnect attempts cannot happen.
package realtime

import (
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sameanonim/imageboard/internal/logger"
	"github.com/sameanonim/imageboard/internal/metrics"
)

// State of the connection lifecycle.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "disconnected"
	}
}

// Callbacks are invoked from the client's run loop, in arrival order; no
// reordering or deduplication is performed here.
type Callbacks struct {
	// OnConnect fires on every successful connection. reconnected is true
	// when at least one earlier connection existed in this session.
	OnConnect func(reconnected bool)

	// OnDisconnect fires when an established connection is lost, before any
	// reconnection handling.
	OnDisconnect func(err error)

	// OnReconnectFailed fires once, after the retry budget is exhausted.
	OnReconnectFailed func()

	// OnEvent delivers every named push event.
	OnEvent func(name string, data json.RawMessage)
}

// Options configure the connection policy. Zero values fall back to the
// production defaults.
type Options struct {
	URL          string
	InitialDelay time.Duration
	MaxDelay     time.Duration
	MaxAttempts  int
	DialTimeout  time.Duration
}

func (o *Options) applyDefaults() {
	if o.InitialDelay == 0 {
		o.InitialDelay = time.Second
	}
	if o.MaxDelay == 0 {
		o.MaxDelay = 5 * time.Second
	}
	if o.MaxAttempts == 0 {
		o.MaxAttempts = 5
	}
	if o.DialTimeout == 0 {
		o.DialTimeout = 20 * time.Second
	}
}

var errClientClosed = errors.New("realtime client closed")

type Client struct {
	opts Options
	cb   Callbacks

	dialer *websocket.Dialer
	state  atomic.Int32

	// Thread to join on every (re)connect; 0 when no thread is open.
	threadID atomic.Int64

	send    chan envelope
	closed  chan struct{}
	done    chan struct{}
	started atomic.Bool
}

func New(opts Options, cb Callbacks) *Client {
	opts.applyDefaults()
	return &Client{
		opts: opts,
		cb:   cb,
		dialer: &websocket.Dialer{
			HandshakeTimeout: opts.DialTimeout,
		},
		send:   make(chan envelope, 1<<5),
		closed: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start launches the connection loop: dial, serve, reconnect with capped
// exponential backoff, give up after the attempt budget.
func (c *Client) Start() {
	if !c.started.CompareAndSwap(false, true) {
		return
	}
	go c.run()
}

// State returns the current lifecycle state.
func (c *Client) State() State {
	return State(c.state.Load())
}

func (c *Client) setState(s State) {
	c.state.Store(int32(s))
	metrics.ConnectionState.Set(float64(s))
}

// JoinThread registers the open thread and announces it to the server. The
// registration survives reconnects: every fresh connection re-joins.
func (c *Client) JoinThread(id int64) {
	c.threadID.Store(id)
	if c.State() == StateConnected {
		c.enqueue(envelope{Event: messageJoinThread, Data: marshalThreadRef(id)})
	}
}

// LeaveThread announces departure and clears the registration. Best-effort:
// no acknowledgment is awaited.
func (c *Client) LeaveThread(id int64) {
	c.threadID.CompareAndSwap(id, 0)
	if c.State() == StateConnected {
		c.enqueue(envelope{Event: messageLeaveThread, Data: marshalThreadRef(id)})
	}
}

// Close tears the connection down, sending a best-effort leave message and a
// close frame first. Blocks until the run loop exits.
func (c *Client) Close() {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}
	if c.started.Load() {
		<-c.done
	}
}

func (c *Client) enqueue(env envelope) {
	select {
	case c.send <- env:
	default:
		logger.Log.Warn("outgoing realtime message dropped", "event", env.Event)
	}
}

func marshalThreadRef(id int64) json.RawMessage {
	raw, _ := json.Marshal(threadRef{ThreadID: id})
	return raw
}

func (c *Client) run() {
	defer close(c.done)
	defer c.setState(StateDisconnected)

	var (
		attempts int
		delay    = c.opts.InitialDelay
		everOpen bool
	)

	for {
		select {
		case <-c.closed:
			return
		default:
		}

		if attempts == 0 && !everOpen {
			c.setState(StateConnecting)
		}

		conn, _, err := c.dialer.Dial(c.opts.URL, nil)
		if err != nil {
			attempts++
			metrics.ReconnectAttemptsTotal.Inc()
			logger.Log.Warn("connection attempt failed",
				"attempt", attempts, "error", err)
			if attempts >= c.opts.MaxAttempts {
				if c.cb.OnReconnectFailed != nil {
					c.cb.OnReconnectFailed()
				}
				return
			}
			c.setState(StateReconnecting)
			if !c.sleep(delay) {
				return
			}
			delay = nextDelay(delay, c.opts.MaxDelay)
			continue
		}

		c.setState(StateConnected)
		attempts = 0
		delay = c.opts.InitialDelay

		if tid := c.threadID.Load(); tid != 0 {
			c.enqueue(envelope{Event: messageJoinThread, Data: marshalThreadRef(tid)})
		}
		if c.cb.OnConnect != nil {
			c.cb.OnConnect(everOpen)
		}
		everOpen = true

		err = c.serve(conn)
		conn.Close()
		if errors.Is(err, errClientClosed) {
			return
		}
		if c.cb.OnDisconnect != nil {
			c.cb.OnDisconnect(err)
		}

		// A close frame from the server is a deliberate disconnect: re-dial
		// immediately with a fresh backoff budget. Anything else is a network
		// fault and goes through the backoff path.
		if isServerClose(err) {
			c.setState(StateConnecting)
			continue
		}
		c.setState(StateReconnecting)
		if !c.sleep(delay) {
			return
		}
		delay = nextDelay(delay, c.opts.MaxDelay)
	}
}

// serve multiplexes reads, queued writes and shutdown over one connection.
func (c *Client) serve(conn *websocket.Conn) error {
	receive := make(chan envelope)
	readErr := make(chan error, 1)
	readDone := make(chan struct{})
	defer close(readDone)

	go func() {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			var env envelope
			if err := json.Unmarshal(msg, &env); err != nil {
				logger.Log.Warn("dropping malformed push message", "error", err)
				continue
			}
			select {
			case receive <- env:
			case <-readDone:
				return
			}
		}
	}()

	for {
		select {
		case env := <-receive:
			metrics.PushEventsTotal.WithLabelValues(env.Event).Inc()
			if c.cb.OnEvent != nil {
				c.cb.OnEvent(env.Event, env.Data)
			}
		case env := <-c.send:
			if err := conn.WriteJSON(env); err != nil {
				return err
			}
		case err := <-readErr:
			return err
		case <-c.closed:
			c.shutdown(conn)
			return errClientClosed
		}
	}
}

// shutdown sends the best-effort leave message and a close frame. Errors are
// ignored: the page is going away regardless.
func (c *Client) shutdown(conn *websocket.Conn) {
	if tid := c.threadID.Load(); tid != 0 {
		conn.WriteJSON(envelope{Event: messageLeaveThread, Data: marshalThreadRef(tid)})
	}
	deadline := time.Now().Add(time.Second)
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
}

// sleep waits for the backoff delay, returning false when the client was
// closed while waiting.
func (c *Client) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-c.closed:
		return false
	}
}

func nextDelay(current, max time.Duration) time.Duration {
	next := current * 2
	if next > max {
		return max
	}
	return next
}

func isServerClose(err error) bool {
	var closeErr *websocket.CloseError
	if !errors.As(err, &closeErr) {
		return false
	}
	// Abnormal closure is generated locally when the link drops without a
	// close frame; it does not indicate a deliberate server disconnect.
	return closeErr.Code != websocket.CloseAbnormalClosure
}
