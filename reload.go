package hubconsole

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	nbiowebsocket "github.com/lesismal/nbio/nbhttp/websocket"
	"go.uber.org/zap"
)

// ReloadMessage is sent to every connected browser when the built UI
// changes.
type ReloadMessage struct {
	Type       string    `json:"type"`
	Generation uint64    `json:"generation"`
	Path       string    `json:"path,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

type reloadConn struct {
	id    string
	send  chan []byte
	close func() error
}

// ReloadHub keeps the live reload websockets of the development server.
type ReloadHub struct {
	mu         sync.Mutex
	conns      map[string]*reloadConn
	closing    bool
	generation uint64

	nbio     bool
	upgrader websocket.Upgrader
	log      *zap.Logger
	metrics  *Metrics
}

// NewReloadHub creates a hub. With useNBIO the connections are upgraded
// by the nbio websocket package, which the nbio engine needs.
func NewReloadHub(useNBIO bool, log *zap.Logger, m *Metrics) *ReloadHub {
	return &ReloadHub{
		conns: map[string]*reloadConn{},
		nbio:  useNBIO,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: 5 * time.Second,
			ReadBufferSize:   1024,
			WriteBufferSize:  4096,
			CheckOrigin:      func(r *http.Request) bool { return true },
		},
		log:     log,
		metrics: m,
	}
}

func (h *ReloadHub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Handle upgrades the request and keeps the connection until the browser
// goes away.
func (h *ReloadHub) Handle(c *Context) {
	h.mu.Lock()
	closing := h.closing
	h.mu.Unlock()
	if closing {
		c.HTTPError(http.StatusServiceUnavailable, "shutting down")
		return
	}

	w := c.ResponseWriter
	if sw, ok := w.(*statusWriter); ok {
		sw.status = http.StatusSwitchingProtocols
		w = sw.ResponseWriter
	}

	if h.nbio {
		h.handleNBIO(c, w)
		return
	}

	conn, err := h.upgrader.Upgrade(w, c.Request, nil)
	if err != nil {
		c.Logger().Debug("reload upgrade failed", zap.Error(err))
		return
	}

	rc := h.add(uuid.NewString(), conn.Close)
	go h.writePump(rc, func(b []byte) error {
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		return conn.WriteMessage(websocket.TextMessage, b)
	})

	// The browser never sends anything; reading only detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(rc.id)
}

func (h *ReloadHub) handleNBIO(c *Context, w http.ResponseWriter) {
	id := uuid.NewString()

	u := nbiowebsocket.NewUpgrader()
	u.CheckOrigin = func(r *http.Request) bool { return true }
	u.OnClose(func(conn *nbiowebsocket.Conn, err error) {
		h.remove(id)
	})

	conn, err := u.Upgrade(w, c.Request, nil)
	if err != nil {
		c.Logger().Debug("reload upgrade failed", zap.Error(err))
		return
	}

	rc := h.add(id, conn.Close)
	go h.writePump(rc, func(b []byte) error {
		return conn.WriteMessage(nbiowebsocket.TextMessage, b)
	})
}

func (h *ReloadHub) add(id string, closeFn func() error) *reloadConn {
	rc := &reloadConn{id: id, send: make(chan []byte, 8), close: closeFn}

	h.mu.Lock()
	h.conns[id] = rc
	n := len(h.conns)
	h.mu.Unlock()

	h.metrics.reloadClients(n)
	h.log.Debug("reload client connected", zap.String("id", id), zap.Int("count", n))
	return rc
}

func (h *ReloadHub) remove(id string) {
	h.mu.Lock()
	rc, ok := h.conns[id]
	if ok {
		delete(h.conns, id)
		close(rc.send)
	}
	n := len(h.conns)
	h.mu.Unlock()

	if ok {
		h.metrics.reloadClients(n)
		h.log.Debug("reload client gone", zap.String("id", id), zap.Int("count", n))
	}
}

func (h *ReloadHub) writePump(rc *reloadConn, write func([]byte) error) {
	for msg := range rc.send {
		if err := write(msg); err != nil {
			_ = rc.close()
			return
		}
	}
}

// Reload tells every browser to reload because path changed.
func (h *ReloadHub) Reload(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.generation++
	msg, err := json.Marshal(ReloadMessage{
		Type:       "reload",
		Generation: h.generation,
		Path:       path,
		Timestamp:  time.Now().UTC(),
	})
	if err != nil {
		h.log.Error("encoding reload message", zap.Error(err))
		return
	}

	for _, rc := range h.conns {
		select {
		case rc.send <- msg:
		default:
			// A browser this far behind reloads on the next message anyway.
		}
	}
	h.metrics.reloaded()
	h.log.Info("reload", zap.String("path", path), zap.Int("clients", len(h.conns)))
}

// Close refuses new connections and closes the open ones.
func (h *ReloadHub) Close() {
	h.mu.Lock()
	h.closing = true
	conns := make([]*reloadConn, 0, len(h.conns))
	for _, rc := range h.conns {
		conns = append(conns, rc)
	}
	h.mu.Unlock()

	for _, rc := range conns {
		_ = rc.close()
	}
}
