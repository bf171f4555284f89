package messages

import "blast-arena/server/models"

// MessageType defines the type of message being sent
type MessageType string

const (
	MessageTypeJoin        MessageType = "join"
	MessageTypeJoinSuccess MessageType = "join_success"
	MessageTypeMove        MessageType = "move"
	MessageTypePlantBomb   MessageType = "plant_bomb"
	MessageTypeUpdate      MessageType = "update"
	MessageTypeEliminated  MessageType = "eliminated"
	MessageTypeError       MessageType = "error"
)

// Error codes sent in ErrorMessage.Code
const (
	CodeUnknownMessageType = "UNKNOWN_MESSAGE_TYPE"
	CodeBadPayload         = "BAD_PAYLOAD"
	CodeJoinFailed         = "JOIN_FAILED"
	CodeNotJoined          = "NOT_JOINED"
	CodeMoveFailed         = "MOVE_FAILED"
	CodePlantFailed        = "PLANT_FAILED"
)

// BaseMessage is the base structure for all messages
type BaseMessage struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

// JoinMessage asks to enter a match. An empty Match joins the default one.
type JoinMessage struct {
	Username string `json:"username"`
	Match    string `json:"match"`
}

// JoinSuccessMessage represents a successful join response
type JoinSuccessMessage struct {
	PlayerID string `json:"player_id"`
	MatchID  string `json:"match_id"`
	Message  string `json:"message"`
}

// MoveMessage represents a player movement request
type MoveMessage struct {
	Direction string `json:"direction"` // north, south, east, west, northeast, northwest, southeast, southwest
}

// PlantBombMessage plants a bomb on the sender's cell
type PlantBombMessage struct {
	Piercing bool `json:"piercing"`
}

// EliminatedMessage announces a player caught in a blast
type EliminatedMessage struct {
	PlayerID string `json:"player_id"`
	Username string `json:"username"`
	Tick     uint64 `json:"tick"`
}

// ErrorMessage represents an error response
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PlayerState is one player as seen by clients
type PlayerState struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Direction string  `json:"direction"`
}

// BombState is one bomb as seen by clients
type BombState struct {
	X        int  `json:"x"`
	Y        int  `json:"y"`
	Lifetime int  `json:"lifetime"`
	Range    int  `json:"range"`
	Piercing bool `json:"piercing"`
}

// BlastState is one blast as seen by clients; Cells are every burning cell
type BlastState struct {
	CenterX    int      `json:"center_x"`
	CenterY    int      `json:"center_y"`
	Lifetime   int      `json:"lifetime"`
	SpreadDone bool     `json:"spread_done"`
	Cells      [][2]int `json:"cells"`
}

// UpdateMessage represents a world update
type UpdateMessage struct {
	Tick    uint64        `json:"tick"`
	Stage   []string      `json:"stage"`
	Players []PlayerState `json:"players"`
	Bombs   []BombState   `json:"bombs"`
	Blasts  []BlastState  `json:"blasts"`
}

// Roster names the players of a world. It is consulted per player value, so
// players the roster does not know are still shown, without an ID.
type Roster interface {
	Identify(p models.Player) (id, username string, ok bool)
}

// NewUpdateMessage builds the client view of a world at a tick.
func NewUpdateMessage(tick uint64, world models.World, roster Roster) UpdateMessage {
	players := world.Players()
	bombs := world.Bombs()
	blasts := world.Blasts()

	msg := UpdateMessage{
		Tick:    tick,
		Stage:   world.Stage().Layout(),
		Players: make([]PlayerState, 0, len(players)),
		Bombs:   make([]BombState, 0, len(bombs)),
		Blasts:  make([]BlastState, 0, len(blasts)),
	}

	for _, p := range players {
		state := PlayerState{X: p.Position.X, Y: p.Position.Y, Direction: p.Direction.String()}
		if roster != nil {
			state.ID, state.Username, _ = roster.Identify(p)
		}
		msg.Players = append(msg.Players, state)
	}

	for _, b := range bombs {
		msg.Bombs = append(msg.Bombs, BombState{
			X:        b.Position.X,
			Y:        b.Position.Y,
			Lifetime: b.Lifetime,
			Range:    b.Range,
			Piercing: b.Piercing,
		})
	}

	for _, b := range blasts {
		cells := b.Cells()
		state := BlastState{
			CenterX:    b.Center().X,
			CenterY:    b.Center().Y,
			Lifetime:   b.Lifetime(),
			SpreadDone: b.SpreadDone(),
			Cells:      make([][2]int, 0, len(cells)),
		}
		for _, c := range cells {
			state.Cells = append(state.Cells, [2]int{c.X, c.Y})
		}
		msg.Blasts = append(msg.Blasts, state)
	}

	return msg
}
