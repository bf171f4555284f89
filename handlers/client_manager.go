package handlers

import (
	"log"
	"sync"

	"blast-arena/server/messages"
	"blast-arena/server/models"
	"blast-arena/server/services"
)

type client struct {
	matchID string
	handler *ClientHandler
}

// ClientManager manages connected clients
type ClientManager struct {
	clients map[string]client // Map PlayerID to client
	mutex   sync.RWMutex
}

// NewClientManager creates a new client manager
func NewClientManager() *ClientManager {
	return &ClientManager{
		clients: make(map[string]client),
	}
}

// AddClient adds a client to the manager
func (cm *ClientManager) AddClient(playerID, matchID string, handler *ClientHandler) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	cm.clients[playerID] = client{matchID: matchID, handler: handler}
}

// RemoveClient removes a client from the manager
func (cm *ClientManager) RemoveClient(playerID string) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	delete(cm.clients, playerID)
}

// Count returns the number of registered clients
func (cm *ClientManager) Count() int {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()
	return len(cm.clients)
}

// BroadcastToMatch sends a message to every client in a match
func (cm *ClientManager) BroadcastToMatch(matchID string, msg interface{}) {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	for id, c := range cm.clients {
		if c.matchID != matchID {
			continue
		}
		if err := c.handler.conn.SendMessage(msg); err != nil {
			log.Printf("Error broadcasting to client %s: %v", id, err)
		}
	}
}

// WatchMatch streams eliminations and world updates of a match to its clients
func (cm *ClientManager) WatchMatch(match *services.MatchService) {
	match.OnTick(func(tick uint64, world models.World, roster services.Roster, eliminated []services.Elimination) {
		for _, e := range eliminated {
			cm.BroadcastToMatch(match.ID(), messages.BaseMessage{
				Type: messages.MessageTypeEliminated,
				Payload: messages.EliminatedMessage{
					PlayerID: e.PlayerID,
					Username: e.Username,
					Tick:     tick,
				},
			})
		}

		cm.BroadcastToMatch(match.ID(), messages.BaseMessage{
			Type:    messages.MessageTypeUpdate,
			Payload: messages.NewUpdateMessage(tick, world, roster),
		})
	})
}
