// Copyright (c) 2026 mafia-night contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package broadcast

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Size of the send channel buffer
	sendBufferSize = 64
)

// Client is one websocket subscriber of a game's events. Subscribers are
// read-only consumers; inbound frames are discarded.
type Client struct {
	hub    *Hub
	gameID string
	conn   *websocket.Conn
	send   chan []byte
}

// NewClient wires an upgraded connection into the hub.
func NewClient(hub *Hub, gameID string, conn *websocket.Conn) *Client {
	c := &Client{
		hub:    hub,
		gameID: gameID,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
	}
	hub.register(gameID, c)
	return c
}

// Run services the connection until it closes.
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// enqueue hands a message to the write pump, dropping it if the buffer is
// full. Dropping keeps broadcasts non-blocking; clients resync from the
// next round-update.
func (c *Client) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		slog.Warn("subscriber buffer full, message dropped", "game_id", c.gameID)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c.gameID, c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
