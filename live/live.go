// Package live pushes region updates to connected browsers over a
// websocket. It carries the exact wire shape the HTTP partial-update path
// responds with, so the client applies both through the same code path.
package live

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/syntax-framework/spage/swp"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Hub fans region updates out to every subscriber of a topic. Topics are
// arbitrary strings, normally the url of the page being watched.
type Hub struct {
	log      *zap.Logger
	upgrader websocket.Upgrader

	mutex  sync.RWMutex
	topics map[string]map[*subscriber]bool
	closed bool
}

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		topics: map[string]map[*subscriber]bool{},
	}
}

// Handler upgrades the request and subscribes the connection to topic until
// it drops.
func (h *Hub) Handler(topic string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.Warn("websocket upgrade failed", zap.String("topic", topic), zap.Error(err))
			return
		}
		sub := &subscriber{conn: conn, send: make(chan []byte, 16)}
		if !h.add(topic, sub) {
			conn.Close()
			return
		}
		go h.writePump(sub)
		h.readPump(topic, sub)
	})
}

// Push serializes the updates as a partial response and queues it for every
// subscriber of topic. Slow subscribers are dropped, a push never blocks.
func (h *Hub) Push(topic string, updates ...swp.RegionUpdate) error {
	data, err := json.Marshal(&swp.PartialResponse{Regions: updates})
	if err != nil {
		return err
	}

	h.mutex.RLock()
	subs := make([]*subscriber, 0, len(h.topics[topic]))
	for sub := range h.topics[topic] {
		subs = append(subs, sub)
	}
	h.mutex.RUnlock()

	for _, sub := range subs {
		select {
		case sub.send <- data:
		default:
			h.log.Warn("dropping slow live subscriber", zap.String("topic", topic))
			h.remove(topic, sub)
		}
	}
	return nil
}

// Close disconnects every subscriber and rejects new ones
func (h *Hub) Close() {
	h.mutex.Lock()
	if h.closed {
		h.mutex.Unlock()
		return
	}
	h.closed = true
	topics := h.topics
	h.topics = map[string]map[*subscriber]bool{}
	h.mutex.Unlock()

	for _, subs := range topics {
		for sub := range subs {
			close(sub.send)
		}
	}
}

func (h *Hub) add(topic string, sub *subscriber) bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.closed {
		return false
	}
	subs := h.topics[topic]
	if subs == nil {
		subs = map[*subscriber]bool{}
		h.topics[topic] = subs
	}
	subs[sub] = true
	return true
}

func (h *Hub) remove(topic string, sub *subscriber) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	subs := h.topics[topic]
	if subs == nil || !subs[sub] {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.topics, topic)
	}
	close(sub.send)
}

// readPump drains (and discards) client frames so pongs are processed and a
// dropped connection is noticed
func (h *Hub) readPump(topic string, sub *subscriber) {
	defer func() {
		h.remove(topic, sub)
		sub.conn.Close()
	}()
	sub.conn.SetReadLimit(512)
	sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(sub *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sub.conn.Close()
	}()
	for {
		select {
		case data, ok := <-sub.send:
			sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				sub.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
