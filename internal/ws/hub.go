// Package ws реализует канал наблюдателей: websocket-хаб, рассылающий
// события активности аккаунтов всем подключённым клиентам. Хаб — это
// приёмник рассылки для шины уведомлений; доставка best-effort, без
// подтверждений и повторов, отключённый клиент событие просто не получает.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/magabrotheeeer/newspaper-backend/internal/lib/sl"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Event — конверт события, отправляемый клиентам.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub хранит множество подключённых клиентов и рассылает им события.
// Все изменения множества проходят через каналы и цикл Run,
// поэтому доступ к clients не требует блокировок.
type Hub struct {
	log        *slog.Logger
	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	upgrader   websocket.Upgrader
}

// NewHub создает новый Hub.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log:        log,
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 64),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(_ *http.Request) bool { return true },
		},
	}
}

// Run обслуживает подключения и рассылку до отмены контекста.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.log.Info("observer connected",
				slog.String("observer_id", c.id),
				slog.String("addr", c.conn.RemoteAddr().String()))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.log.Info("observer disconnected", slog.String("observer_id", c.id))
			}
		case message := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					// Медленный клиент не должен задерживать остальных.
					delete(h.clients, c)
					close(c.send)
				}
			}
		case <-ctx.Done():
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			return
		}
	}
}

// Broadcast отправляет событие с именем topic всем подключённым клиентам.
func (h *Hub) Broadcast(topic string, payload any) error {
	const op = "ws.Broadcast"
	message, err := json.Marshal(Event{Event: topic, Data: payload})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	select {
	case h.broadcast <- message:
		return nil
	default:
		return fmt.Errorf("%s: broadcast queue is full", op)
	}
}

// ServeHTTP обновляет HTTP-соединение до websocket и регистрирует клиента.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "ws.ServeHTTP"
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("failed to upgrade connection", slog.String("op", op), sl.Err(err))
		return
	}
	c := &client{
		id:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, 16),
	}
	h.register <- c

	go c.writePump()
	go c.readPump()
}

// readPump вычитывает входящие кадры до закрытия соединения.
// Клиенты ничего не присылают, чтение нужно для обработки close и pong.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
