package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/splatseries/bracket-system/brackets"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to the frontend origins once they are fixed.
		return true
	},
}

type WebSocketHandler struct {
	hub *brackets.Hub
}

func NewWebSocketHandler(hub *brackets.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// ServeMatch subscribes the connection to one match's event stream.
func (h *WebSocketHandler) ServeMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.subscribe(w, r, brackets.MatchTopic(matchID))
}

// ServeBracket subscribes the connection to a tournament's score feed.
func (h *WebSocketHandler) ServeBracket(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.subscribe(w, r, brackets.BracketTopic(tournamentID))
}

func (h *WebSocketHandler) subscribe(w http.ResponseWriter, r *http.Request, topic string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		log.Printf("failed to upgrade connection for topic %s: %v", topic, err)
		return
	}

	client := &brackets.Client{
		Hub:   h.hub,
		Conn:  conn,
		Send:  make(chan []byte, 256),
		Topic: topic,
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
