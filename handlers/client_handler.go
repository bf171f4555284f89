package handlers

import (
	"log"

	"github.com/gorilla/websocket"

	"blast-arena/server/messages"
	"blast-arena/server/models"
	"blast-arena/server/network"
	"blast-arena/server/services"
)

// ClientHandler manages a single client connection
type ClientHandler struct {
	conn          *network.Connection
	playerService *services.PlayerService
	clientManager *ClientManager
	playerID      string
	username      string
	match         *services.MatchService
}

// HandleClientConnection serves one client until its connection closes
func HandleClientConnection(wsConn *websocket.Conn, codec network.Codec, playerService *services.PlayerService, clientManager *ClientManager) {
	log.Printf("New connection from %s using %s frames", wsConn.RemoteAddr(), codec.Name())

	conn := network.NewConnection(wsConn, codec)
	handler := &ClientHandler{
		conn:          conn,
		playerService: playerService,
		clientManager: clientManager,
	}

	// Start the write pump in a goroutine
	go conn.WritePump()

	// Handle the read pump in the current goroutine
	conn.ReadPump(handler)

	// Clean up when the connection is closed
	if handler.playerID != "" {
		clientManager.RemoveClient(handler.playerID)
		playerService.Leave(handler.playerID)
		log.Printf("Player %s disconnected and left match %s", handler.username, handler.match.ID())
	}
}

// HandleMessage handles incoming messages from the client
func (h *ClientHandler) HandleMessage(conn *network.Connection, message []byte) {
	var baseMsg messages.BaseMessage
	if err := conn.Codec().Unmarshal(message, &baseMsg); err != nil {
		log.Printf("Error decoding message: %v", err)
		h.sendError(messages.CodeBadPayload, "Malformed message")
		return
	}

	switch baseMsg.Type {
	case messages.MessageTypeJoin:
		h.handleJoin(baseMsg.Payload)
	case messages.MessageTypeMove:
		h.handleMove(baseMsg.Payload)
	case messages.MessageTypePlantBomb:
		h.handlePlantBomb(baseMsg.Payload)
	default:
		log.Printf("Unknown message type: %s", baseMsg.Type)
		h.sendError(messages.CodeUnknownMessageType, "Unknown message type received")
	}
}

// handleJoin puts the client into a match
func (h *ClientHandler) handleJoin(payload interface{}) {
	if h.playerID != "" {
		h.sendError(messages.CodeJoinFailed, "Already joined a match")
		return
	}

	var joinMsg messages.JoinMessage
	if !h.decode(payload, &joinMsg) {
		return
	}

	playerID, match, err := h.playerService.Join(joinMsg.Username, joinMsg.Match)
	if err != nil {
		log.Printf("Error joining %q: %v", joinMsg.Username, err)
		h.sendError(messages.CodeJoinFailed, err.Error())
		return
	}

	h.playerID = playerID
	h.username = joinMsg.Username
	h.match = match

	joinSuccessMsg := messages.BaseMessage{
		Type: messages.MessageTypeJoinSuccess,
		Payload: messages.JoinSuccessMessage{
			PlayerID: playerID,
			MatchID:  match.ID(),
			Message:  "Join successful",
		},
	}
	if err := h.conn.SendMessage(joinSuccessMsg); err != nil {
		log.Printf("Error sending join success: %v", err)
		return
	}

	// Register after the reply so tick broadcasts never overtake it
	h.clientManager.AddClient(playerID, match.ID(), h)

	tick, world, roster := match.View()
	h.send(messages.BaseMessage{
		Type:    messages.MessageTypeUpdate,
		Payload: messages.NewUpdateMessage(tick, world, roster),
	})
	log.Printf("Player %s joined match %s", h.username, match.ID())
}

// handleMove handles player movement requests
func (h *ClientHandler) handleMove(payload interface{}) {
	if !h.joined() {
		return
	}

	var moveMsg messages.MoveMessage
	if !h.decode(payload, &moveMsg) {
		return
	}

	direction, err := models.ParseDirection(moveMsg.Direction)
	if err != nil {
		h.sendError(messages.CodeMoveFailed, err.Error())
		return
	}

	if _, err := h.match.MovePlayer(h.playerID, direction); err != nil {
		h.sendError(messages.CodeMoveFailed, err.Error())
	}
}

// handlePlantBomb drops a bomb where the player stands
func (h *ClientHandler) handlePlantBomb(payload interface{}) {
	if !h.joined() {
		return
	}

	var plantMsg messages.PlantBombMessage
	if payload != nil && !h.decode(payload, &plantMsg) {
		return
	}

	if _, err := h.match.PlantBomb(h.playerID, plantMsg.Piercing); err != nil {
		h.sendError(messages.CodePlantFailed, err.Error())
	}
}

func (h *ClientHandler) joined() bool {
	if h.playerID == "" {
		h.sendError(messages.CodeNotJoined, "Join a match first")
		return false
	}
	return true
}

func (h *ClientHandler) decode(payload interface{}, target interface{}) bool {
	if err := network.DecodePayload(h.conn.Codec(), payload, target); err != nil {
		log.Printf("Error decoding payload: %v", err)
		h.sendError(messages.CodeBadPayload, "Malformed payload")
		return false
	}
	return true
}

func (h *ClientHandler) sendError(code, message string) {
	h.send(messages.BaseMessage{
		Type: messages.MessageTypeError,
		Payload: messages.ErrorMessage{
			Code:    code,
			Message: message,
		},
	})
}

func (h *ClientHandler) send(msg messages.BaseMessage) {
	if err := h.conn.SendMessage(msg); err != nil {
		log.Printf("Error sending %s: %v", msg.Type, err)
	}
}
