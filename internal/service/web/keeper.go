package web

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	pingEvery    = time.Second
	deadAfter    = 5 * time.Second
	writeTimeout = time.Second
)

// client serializes writes, a gorilla conn allows one concurrent writer.
type client struct {
	conn *websocket.Conn
	wmx  sync.Mutex
	subs map[string]struct{}
}

func (c *client) write(payload interface{}) error {
	js, err := json.Marshal(NewMessage(payload))
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	c.wmx.Lock()
	defer c.wmx.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, js)
}

type keeper struct {
	mx      sync.RWMutex
	clients map[*websocket.Conn]*client
	// subscribed sends the current snapshot to a new subscriber
	subscribed func(c *client, symbol string)
	logger     *zap.Logger
}

func newKeeper(logger *zap.Logger) *keeper {
	return &keeper{
		clients:    make(map[*websocket.Conn]*client),
		subscribed: func(*client, string) {},
		logger:     logger,
	}
}

func (k *keeper) addConn(conn *websocket.Conn) *client {
	k.mx.Lock()
	defer k.mx.Unlock()

	c := &client{conn: conn, subs: make(map[string]struct{})}
	k.clients[conn] = c
	return c
}

func (k *keeper) count() int {
	k.mx.RLock()
	defer k.mx.RUnlock()
	return len(k.clients)
}

// broadcast writes payload to every client subscribed to symbol. Clients
// that fail the write are dropped, the rest still get the message.
func (k *keeper) broadcast(symbol string, payload interface{}) int {
	k.mx.RLock()
	targets := make([]*client, 0)
	for _, c := range k.clients {
		if _, ok := c.subs[symbol]; ok {
			targets = append(targets, c)
		}
	}
	k.mx.RUnlock()

	sent := 0
	for _, c := range targets {
		if err := c.write(payload); err != nil {
			k.logger.Debug("drop client", zap.String("remote", c.conn.RemoteAddr().String()), zap.Error(err))
			k.close(c.conn)
			continue
		}
		sent++
	}
	return sent
}

func (k *keeper) close(conn *websocket.Conn) {
	k.mx.Lock()
	defer k.mx.Unlock()

	_ = conn.Close()
	delete(k.clients, conn)
}

func (k *keeper) closeAll() {
	k.mx.Lock()
	defer k.mx.Unlock()

	for conn := range k.clients {
		_ = conn.Close()
		delete(k.clients, conn)
	}
}

func (k *keeper) apply(c *client, cmd Command) {
	if cmd.Symbol == "" {
		_ = c.write(Error{Message: "empty symbol"})
		return
	}

	k.mx.Lock()
	switch cmd.Action {
	case ActionSubscribe:
		c.subs[cmd.Symbol] = struct{}{}
	case ActionUnsubscribe:
		delete(c.subs, cmd.Symbol)
	default:
		k.mx.Unlock()
		_ = c.write(Error{Message: fmt.Sprintf("unknown action %q", cmd.Action)})
		return
	}
	k.mx.Unlock()

	_ = c.write(Ack{Action: cmd.Action, Symbol: cmd.Symbol})
	if cmd.Action == ActionSubscribe {
		k.subscribed(c, cmd.Symbol)
	}
}

func (k *keeper) keep(c *client) {
	conn := c.conn

	pinger := time.NewTicker(pingEvery)
	defer pinger.Stop()

	var lastAlive atomic.Int64
	lastAlive.Store(time.Now().UnixNano())
	alive := func() { lastAlive.Store(time.Now().UnixNano()) }

	read := make(chan msg)
	done := make(chan struct{})
	defer close(done)
	defer k.close(conn)

	ponger := conn.PongHandler()
	conn.SetPongHandler(func(appData string) error {
		alive()
		return ponger(appData)
	})

	go func() {
		for {
			mt, data, err := conn.ReadMessage()
			select {
			case read <- msg{mType: mt, data: data, err: err}:
			case <-done:
				return
			}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-pinger.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeTimeout)); err != nil {
				return
			}
			if time.Since(time.Unix(0, lastAlive.Load())) > deadAfter {
				k.logger.Debug("dead peer", zap.String("remote", conn.RemoteAddr().String()))
				return
			}
		case msg := <-read:
			if msg.err != nil {
				return
			}

			switch msg.mType {
			case websocket.CloseMessage:
				return
			case websocket.TextMessage:
				k.apply(c, parseCommand(msg.data))
			}

			alive()
		}
	}
}
