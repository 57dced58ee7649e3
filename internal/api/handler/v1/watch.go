package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/csihub/codefest-api/internal/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced by the HTTP middleware already.
	},
}

type watchClient struct {
	conn *websocket.Conn
	send chan []byte
}

// RegistrationLister is the slice of the admin service the hub needs to
// build snapshots.
type RegistrationLister interface {
	List(ctx context.Context, query string) ([]domain.Registration, error)
}

// WatchHub pushes a full-collection snapshot to every connected admin
// dashboard whenever a registration mutates. Snapshots, not deltas:
// dashboards re-render the whole list anyway and it keeps clients from
// drifting out of sync.
type WatchHub struct {
	svc RegistrationLister

	clients      map[*watchClient]struct{}
	clientsMutex sync.RWMutex
	broadcast    chan []byte
	register     chan *watchClient
	unregister   chan *watchClient
}

func NewWatchHub(svc RegistrationLister) *WatchHub {
	return &WatchHub{
		svc:        svc,
		clients:    make(map[*watchClient]struct{}),
		broadcast:  make(chan []byte),
		register:   make(chan *watchClient),
		unregister: make(chan *watchClient),
	}
}

func (h *WatchHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clientsMutex.Lock()
			h.clients[client] = struct{}{}
			h.clientsMutex.Unlock()
		case client := <-h.unregister:
			h.clientsMutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.clientsMutex.Unlock()
		case message := <-h.broadcast:
			h.clientsMutex.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.clientsMutex.Unlock()
		}
	}
}

// Notify fetches the current collection and fans it out. Failures are
// logged and swallowed; the mutation that triggered the notify already
// succeeded and must not be reported as failed.
func (h *WatchHub) Notify(ctx context.Context) {
	if h == nil {
		return
	}

	regs, err := h.svc.List(ctx, "")
	if err != nil {
		zap.L().Error("watch hub snapshot failed", zap.Error(err))
		return
	}

	message, err := json.Marshal(regs)
	if err != nil {
		zap.L().Error("watch hub marshal failed", zap.Error(err))
		return
	}

	h.broadcast <- message
}

// HandleWatch godoc
// @Summary      Watch registrations over WebSocket
// @Description  Streams a full registration snapshot to admin dashboards on every change
// @Tags         admin
// @Produce      json
// @Success      101  {string}  string  "Switching Protocols to WebSocket"
// @Failure      401  {object}  response.Err
// @Router       /api/admin/registrations/watch [get]
// @Security     BearerAuth
func (h *WatchHub) HandleWatch(ctx *gin.Context) {
	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		zap.L().Error("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &watchClient{
		conn: conn,
		send: make(chan []byte, 8),
	}
	h.register <- client

	go client.writePump()
	go client.readPump(h)

	// Send the current state right away so the dashboard doesn't wait
	// for the first mutation. The request context dies with the upgrade,
	// so the snapshot uses its own.
	go h.Notify(context.Background())
}

func (c *watchClient) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}

	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump discards inbound frames; the watch stream is one-way. It
// exists to detect the client going away.
func (c *watchClient) readPump(h *WatchHub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}
