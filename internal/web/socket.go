package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/jallerangel/portfolio/internal/rain"
	"github.com/jallerangel/portfolio/internal/session"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 512
	// Frames queued for a slow peer before new ones are dropped.
	sendBuffer = 8
	// Largest viewport side accepted from a browser, in pixels.
	maxViewport = 8192
)

var errNoViewport = errors.New("viewport size not reported yet")

// clientMessage is a message from the browser.
type clientMessage struct {
	Type   string `json:"type"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// rainStream is one browser's rain: an animator drawing into a
// StreamSurface whose frames are written to the socket.
type rainStream struct {
	conn     *websocket.Conn
	handle   *session.Handle
	logger   *log.Logger
	surface  *StreamSurface
	animator *rain.Animator
	resizes  rain.Broadcaster
	send     chan []byte

	mu     sync.Mutex
	width  int
	height int
	sized  bool
}

func newRainStream(conn *websocket.Conn, handle *session.Handle, logger *log.Logger, opts rain.Options) *rainStream {
	s := &rainStream{
		conn:    conn,
		handle:  handle,
		logger:  logger,
		surface: &StreamSurface{},
		send:    make(chan []byte, sendBuffer),
	}
	opts.AfterTick = s.flushFrame
	s.animator = rain.NewAnimator(
		rain.Host{Surface: s.surface, Viewport: s.viewport, Resizes: &s.resizes},
		opts,
	)
	return s
}

// viewport reports the size the browser last sent.
func (s *rainStream) viewport() (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.sized {
		return 0, 0, errNoViewport
	}
	return s.width, s.height, nil
}

// flushFrame runs on the animator goroutine after every tick. Frames are
// dropped rather than queued without bound when the peer is slow.
func (s *rainStream) flushFrame() {
	data, err := json.Marshal(s.surface.Take())
	if err != nil {
		s.logger.Error("encode rain frame", "err", err)
		return
	}
	select {
	case s.send <- data:
	default:
	}
}

// serve runs the stream until the peer goes away. The animator mounts on
// the first resize message, when the viewport size is known.
func (s *rainStream) serve() {
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writePump()
	}()

	s.readPump()

	s.animator.Stop()
	close(s.send)
	<-writerDone
}

// readPump handles resize messages from the browser.
func (s *rainStream) readPump() {
	defer s.conn.Close()
	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.Warn("rain socket read", "err", err)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			s.logger.Debug("ignoring malformed message", "err", err)
			continue
		}
		if msg.Type == "resize" {
			s.resize(msg.Width, msg.Height)
		}
	}
}

// resize records the browser viewport and mounts or resizes the rain.
func (s *rainStream) resize(width, height int) {
	width = max(0, min(width, maxViewport))
	height = max(0, min(height, maxViewport))

	s.mu.Lock()
	first := !s.sized
	s.width, s.height, s.sized = width, height, true
	s.mu.Unlock()

	if first {
		s.animator.Start()
		return
	}
	s.resizes.Notify()
}

// writePump writes frames and pings, and closes the socket when the
// server shuts down.
func (s *rainStream) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()
	for {
		select {
		case message, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case event, ok := <-s.handle.Events:
			if !ok || event.Type == session.EventServerShutdown {
				s.conn.SetWriteDeadline(time.Now().Add(writeWait))
				s.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleRain upgrades the request and streams rain frames until the peer
// disconnects.
func (srv *Server) handleRain(c *gin.Context) {
	conn, err := srv.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		srv.logger.Warn("rain socket upgrade failed", "remote", c.ClientIP(), "err", err)
		return
	}

	handle := srv.registry.Register("browser", "web")
	defer srv.registry.Unregister(handle.ID)

	logger := srv.logger.With("session", handle.ID, "remote", c.ClientIP())
	logger.Debug("rain stream opened")
	newRainStream(conn, handle, logger, rain.Options{Ticker: srv.ticker}).serve()
	logger.Debug("rain stream closed")
}

func newUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     sameOrigin,
	}
}

// sameOrigin accepts requests without an Origin header (non-browser
// clients) and browser requests from the page's own host.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}
