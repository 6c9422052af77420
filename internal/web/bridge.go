package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/vijaikiren/portfolio/internal/navigation"
	"github.com/vijaikiren/portfolio/internal/scrollspy"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// sectionBounds is one measured section as reported by the browser.
type sectionBounds struct {
	Index  int     `json:"index"`
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

// clientMessage is what the page sends over the socket.
type clientMessage struct {
	Type           string          `json:"type"` // "layout", "scroll" or "jump"
	ScrollY        float64         `json:"scroll_y"`
	ViewportHeight float64         `json:"viewport_height"`
	Sections       []sectionBounds `json:"sections,omitempty"`
	Index          *int            `json:"index,omitempty"`
}

// serverMessage is what the server pushes back.
type serverMessage struct {
	Type     string  `json:"type"` // "active", "scroll_to" or "error"
	Index    int     `json:"index"`
	Top      float64 `json:"top,omitempty"`
	Behavior string  `json:"behavior,omitempty"`
	Message  string  `json:"message,omitempty"`
}

// socketHost is the browser tab seen through a WebSocket. Scroll and
// layout reports update its snapshot; scroll commands are written back.
type socketHost struct {
	conn    *websocket.Conn
	logger  *slog.Logger
	writeMu sync.Mutex

	mu       sync.RWMutex
	scrollY  float64
	viewport float64
	layout   map[int]sectionBounds
	subs     map[uint64]func()
	nextSub  uint64
}

var _ navigation.Host = (*socketHost)(nil)

func newSocketHost(conn *websocket.Conn, logger *slog.Logger) *socketHost {
	return &socketHost{
		conn:   conn,
		logger: logger,
		layout: make(map[int]sectionBounds),
		subs:   make(map[uint64]func()),
	}
}

func (h *socketHost) ScrollOffset() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.scrollY
}

func (h *socketHost) ViewportHeight() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.viewport
}

func (h *socketHost) SubscribeScroll(fn func()) navigation.Subscription {
	h.mu.Lock()
	id := h.nextSub
	h.nextSub++
	h.subs[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return navigation.SubscriptionFunc(func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	})
}

func (h *socketHost) ScrollIntoView(index int, region scrollspy.Region) {
	top, _ := region.Bounds()
	h.send(serverMessage{Type: "scroll_to", Index: index, Top: top, Behavior: "smooth"})
}

// notify runs every scroll subscriber.
func (h *socketHost) notify() {
	h.mu.RLock()
	fns := make([]func(), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}

func (h *socketHost) setViewport(scrollY, viewport float64) {
	h.mu.Lock()
	h.scrollY = scrollY
	h.viewport = viewport
	h.mu.Unlock()
}

// applyLayout records fresh measurements and keeps the tracker's registry
// in step with the sections the page reports as mounted.
func (h *socketHost) applyLayout(tracker *scrollspy.Tracker, sections []sectionBounds) {
	seen := make(map[int]bool, len(sections))

	h.mu.Lock()
	for _, sb := range sections {
		if sb.Index < 0 || sb.Top < 0 || sb.Height < 0 {
			continue
		}
		seen[sb.Index] = true
		h.layout[sb.Index] = sb
	}
	var gone []int
	for idx := range h.layout {
		if !seen[idx] {
			gone = append(gone, idx)
			delete(h.layout, idx)
		}
	}
	h.mu.Unlock()

	for idx := range seen {
		if !tracker.Has(idx) {
			tracker.Register(idx, h.region(idx))
		}
	}
	for _, idx := range gone {
		tracker.Unregister(idx)
	}
}

// unmount drops every section this host registered.
func (h *socketHost) unmount(tracker *scrollspy.Tracker) {
	h.mu.Lock()
	indexes := make([]int, 0, len(h.layout))
	for idx := range h.layout {
		indexes = append(indexes, idx)
	}
	h.layout = make(map[int]sectionBounds)
	h.mu.Unlock()

	for _, idx := range indexes {
		tracker.Unregister(idx)
	}
}

// region is a live handle that reads the latest measurement for index.
func (h *socketHost) region(index int) scrollspy.Region {
	return scrollspy.RegionFunc(func() (float64, float64) {
		h.mu.RLock()
		defer h.mu.RUnlock()
		sb, ok := h.layout[index]
		if !ok {
			return 0, 0
		}
		return sb.Top, sb.Height
	})
}

// send writes msg to the page. A failed write closes the connection so
// the read loop ends and the host is torn down.
func (h *socketHost) send(msg serverMessage) {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	if err := h.conn.WriteJSON(msg); err != nil {
		h.logger.Debug("websocket write", "error", err, "type", msg.Type)
		h.conn.Close()
	}
}

func (s *Server) handleWebSocket(c *gin.Context) {
	sess, err := s.currentSession(c)
	if err != nil {
		c.String(http.StatusNotFound, "unknown session")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade", "error", err)
		return
	}
	defer conn.Close()

	log := s.logger.With("component", "bridge", "session", sess.ID)
	ctrl := sess.Controller
	host := newSocketHost(conn, log)

	ctrl.Mount(host, func(active int) {
		host.send(serverMessage{Type: "active", Index: active})
	})
	defer ctrl.Close()

	throttle := scrollspy.NewThrottle(s.cfg.Scroll.Throttle, host.notify)
	defer throttle.Stop()
	defer host.unmount(ctrl.Tracker())

	log.Debug("page connected")
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket read", "error", err)
			}
			log.Debug("page disconnected")
			return
		}

		s.sessions.Touch(sess.ID)

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			host.send(serverMessage{Type: "error", Message: "invalid message format"})
			continue
		}

		switch msg.Type {
		case "layout":
			host.applyLayout(ctrl.Tracker(), msg.Sections)
			throttle.Notify()
		case "scroll":
			if msg.Sections != nil {
				host.applyLayout(ctrl.Tracker(), msg.Sections)
			}
			host.setViewport(msg.ScrollY, msg.ViewportHeight)
			throttle.Notify()
		case "jump":
			if msg.Index == nil {
				host.send(serverMessage{Type: "error", Message: "jump requires an index"})
				continue
			}
			ctrl.JumpToSection(*msg.Index)
		default:
			host.send(serverMessage{Type: "error", Message: "unknown message type: " + msg.Type})
		}
	}
}
