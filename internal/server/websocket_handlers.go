// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebsocketHandler returns a websocket handler that registers connections with the Hub.
// Authentication is handled by route middleware and userID is read from connection locals.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userIDVal := conn.Locals("userID")
		if userIDVal == nil {
			if cerr := conn.Close(); cerr != nil {
				log.Printf("websocket close error: %v", cerr)
			}
			return
		}
		uid, ok := userIDVal.(uint)
		if !ok {
			if cerr := conn.Close(); cerr != nil {
				log.Printf("websocket close error: %v", cerr)
			}
			return
		}

		if s.hub == nil {
			_ = conn.Close()
			return
		}

		// Register connection with scaling guardrails
		client, err := s.hub.Register(uid, conn)
		if err != nil {
			log.Printf("WebSocket Notification: Failed to register user %d: %v", uid, err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		defer s.hub.UnregisterClient(client)

		// Tell the client how many unread notifications are waiting.
		s.sendUnreadSnapshot(conn, uid)

		// Start pumps
		go client.WritePump()
		client.ReadPump()
	})
}

// sendUnreadSnapshot writes the unread-count event directly on a fresh connection.
func (s *Server) sendUnreadSnapshot(conn *websocket.Conn, userID uint) {
	count, err := s.notificationSvc.UnreadCount(context.Background(), userID)
	if err != nil {
		log.Printf("failed to load unread count for user %d: %v", userID, err)
		return
	}

	payload, err := json.Marshal(map[string]any{
		"type":  "unread_count",
		"count": count,
	})
	if err != nil {
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		log.Printf("failed to send unread snapshot to user %d: %v", userID, err)
	}
}
