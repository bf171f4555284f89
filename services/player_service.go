package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultMatchID is the match players join when they name none.
const DefaultMatchID = "lobby"

// PlayerService tracks which match each connected player is in
type PlayerService struct {
	matches *MatchManager
	players map[string]*MatchService
	seq     atomic.Uint64
	mutex   sync.RWMutex
}

// NewPlayerService creates a new player service
func NewPlayerService(matches *MatchManager) *PlayerService {
	return &PlayerService{
		matches: matches,
		players: make(map[string]*MatchService),
	}
}

// Join creates a player for username in the named match
func (ps *PlayerService) Join(username, matchID string) (string, *MatchService, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", nil, errors.New("username is required")
	}
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		matchID = DefaultMatchID
	}

	match, err := ps.matches.GetOrCreateMatch(matchID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open match %s: %w", matchID, err)
	}

	playerID := fmt.Sprintf("player_%d_%d", time.Now().UnixNano(), ps.seq.Add(1))
	if _, err := match.Join(playerID, username); err != nil {
		return "", nil, err
	}

	ps.mutex.Lock()
	ps.players[playerID] = match
	ps.mutex.Unlock()

	return playerID, match, nil
}

// Match returns the match a player is in
func (ps *PlayerService) Match(playerID string) (*MatchService, error) {
	ps.mutex.RLock()
	defer ps.mutex.RUnlock()

	match, exists := ps.players[playerID]
	if !exists {
		return nil, ErrPlayerNotFound
	}
	return match, nil
}

// Leave removes a player from its match
func (ps *PlayerService) Leave(playerID string) {
	ps.mutex.Lock()
	match, exists := ps.players[playerID]
	delete(ps.players, playerID)
	ps.mutex.Unlock()

	if exists {
		match.Leave(playerID)
	}
}
