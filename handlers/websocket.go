package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"blast-arena/server/network"
	"blast-arena/server/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin during development
		return true
	},
}

// NewWebSocketHandler upgrades /ws requests. The codec query parameter picks
// the frame encoding, json when absent.
func NewWebSocketHandler(playerService *services.PlayerService, clientManager *ClientManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		codec, err := network.CodecByName(r.URL.Query().Get("codec"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("Failed to upgrade connection: %v", err)
			return
		}

		HandleClientConnection(conn, codec, playerService, clientManager)
	}
}
