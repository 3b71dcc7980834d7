package realtime

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Broadcaster fans RealTimeFeedback events out to websocket clients,
// supplementing the in-process callback subscription model with a
// wire protocol a practice-session UI can consume directly.
type Broadcaster struct {
	feedback <-chan RealTimeFeedback
	register chan *wsClient
	unregister chan *wsClient
	clients  map[*wsClient]bool
}

// NewBroadcaster wraps an Evaluator's feedback channel for fan-out.
func NewBroadcaster(feedback <-chan RealTimeFeedback) *Broadcaster {
	return &Broadcaster{
		feedback:   feedback,
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		clients:    make(map[*wsClient]bool),
	}
}

// Run drains the feedback channel and fans each event out to all
// connected clients until the channel closes.
func (b *Broadcaster) Run() {
	for {
		select {
		case c := <-b.register:
			b.clients[c] = true
			log.Printf("realtime: client connected (%d total)", len(b.clients))
		case c := <-b.unregister:
			if _, ok := b.clients[c]; ok {
				delete(b.clients, c)
				close(c.send)
				log.Printf("realtime: client disconnected (%d total)", len(b.clients))
			}
		case feedback, ok := <-b.feedback:
			if !ok {
				return
			}
			msg, err := json.Marshal(feedback)
			if err != nil {
				log.Printf("realtime: failed to marshal feedback: %v", err)
				continue
			}
			for c := range b.clients {
				select {
				case c.send <- msg:
				default:
					// slow client, drop this tick
				}
			}
		}
	}
}

// ServeWS upgrades an HTTP request to a websocket and registers the
// connection for live feedback events.
func (b *Broadcaster) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("realtime: upgrade failed: %v", err)
		return
	}
	client := &wsClient{conn: conn, send: make(chan []byte, 256)}
	b.register <- client

	go client.writePump()
	go client.readPump(b.unregister)
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

func (c *wsClient) readPump(unregister chan<- *wsClient) {
	defer func() {
		unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *wsClient) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		w, err := c.conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)
		if err := w.Close(); err != nil {
			return
		}
	}
}
