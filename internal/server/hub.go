package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ayusman/beyondwords/internal/audio"
	"github.com/ayusman/beyondwords/internal/gesture"
	"github.com/ayusman/beyondwords/internal/metrics"
	"github.com/ayusman/beyondwords/internal/narrative"
	"github.com/ayusman/beyondwords/internal/scene"
)

// Envelope types pushed to renderers.
const (
	TypeFrame = "frame"
	TypeAudio = "audio"
	TypeScene = "scene"
)

// Message types renderers send back.
const (
	TypeResize     = "resize"
	TypeAudioReady = "audio-ready"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 30 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4096

	// DefaultClientBuffer is how many messages a renderer may fall behind
	// before it is dropped.
	DefaultClientBuffer = 120
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 16 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// Envelope wraps every message sent to a renderer.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// SceneMessage is the layout a renderer draws a chapter from.
type SceneMessage struct {
	Chapter int          `json:"chapter"`
	Layout  scene.Layout `json:"layout"`
}

type inbound struct {
	Type   string  `json:"type"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type client struct {
	conn  *websocket.Conn
	send  chan []byte
	ready bool
	once  sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub connects browser renderers. It is the presentation sink for frames
// and the audio engine: audio commands go to every renderer that has
// unlocked its audio context.
type Hub struct {
	logger   zerolog.Logger
	onResize func(gesture.Viewport)
	buffer   int

	mu      sync.RWMutex
	clients map[*client]struct{}
	scene   []byte
}

// NewHub creates a hub. onResize, if set, is called when a renderer reports
// its viewport.
func NewHub(logger zerolog.Logger, onResize func(gesture.Viewport)) *Hub {
	return &Hub{
		logger:   logger.With().Str("component", "hub").Logger(),
		onResize: onResize,
		buffer:   DefaultClientBuffer,
		clients:  make(map[*client]struct{}),
	}
}

// ServeHTTP upgrades the request and serves one renderer until it leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, h.buffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	// A late joiner needs the layout of the chapter already under way.
	if h.scene != nil {
		c.send <- h.scene
	}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.WSClients.Set(float64(n))
	h.logger.Info().Str("remote", r.RemoteAddr).Int("clients", n).Msg("renderer connected")

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug().Err(err).Msg("renderer read")
			}
			return
		}
		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			h.logger.Debug().Err(err).Msg("bad renderer message")
			continue
		}
		h.handle(c, msg)
	}
}

func (h *Hub) handle(c *client, msg inbound) {
	switch msg.Type {
	case TypeResize:
		vp := gesture.Viewport{Width: msg.Width, Height: msg.Height}
		if !vp.Valid() {
			return
		}
		if h.onResize != nil {
			h.onResize(vp)
		}
		h.logger.Debug().Float64("width", vp.Width).Float64("height", vp.Height).Msg("viewport resized")
	case TypeAudioReady:
		h.mu.Lock()
		c.ready = true
		h.mu.Unlock()
		h.logger.Info().Msg("renderer audio ready")
	default:
		h.logger.Debug().Str("type", msg.Type).Msg("unknown renderer message")
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		c.close()
		metrics.WSClients.Set(float64(n))
		h.logger.Info().Int("clients", n).Msg("renderer disconnected")
	}
}

// broadcast queues msg for every client, or only audio-ready ones. Clients
// whose queue is full are dropped.
func (h *Hub) broadcast(msg []byte, onlyReady bool) {
	var slow []*client
	h.mu.RLock()
	for c := range h.clients {
		if onlyReady && !c.ready {
			continue
		}
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn().Msg("dropping slow renderer")
		h.remove(c)
	}
}

// Present sends f to every renderer, preceded by the chapter layout when the
// frame resets one.
func (h *Hub) Present(f *narrative.Frame) error {
	if r := f.Signals.ResetChapter; r != nil {
		msg, err := json.Marshal(Envelope{Type: TypeScene, Data: SceneMessage{Chapter: r.Chapter, Layout: r.Scene}})
		if err != nil {
			return err
		}
		h.mu.Lock()
		h.scene = msg
		h.mu.Unlock()
		h.broadcast(msg, false)
	}

	msg, err := json.Marshal(Envelope{Type: TypeFrame, Data: f})
	if err != nil {
		return err
	}
	h.broadcast(msg, false)
	return nil
}

// Ready reports whether any renderer can play sound.
func (h *Hub) Ready() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.ready {
			return true
		}
	}
	return false
}

// Send delivers audio commands to the renderers that can play them.
func (h *Hub) Send(cmds []audio.Command) error {
	msg, err := json.Marshal(Envelope{Type: TypeAudio, Data: cmds})
	if err != nil {
		return err
	}
	h.broadcast(msg, true)
	return nil
}

// Clients returns the number of connected renderers.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every renderer.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()
	for _, c := range clients {
		h.remove(c)
	}
}
