package repository

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/AccelByte/extend-rpg-localserver/pkg/domain"
	"github.com/AccelByte/extend-rpg-localserver/pkg/errors"
)

// InMemoryPlayerRepository keeps aggregates in process memory.
// Each player is stored as its JSON encoding, so callers never share
// nested slices with the store.
type InMemoryPlayerRepository struct {
	mu      sync.RWMutex
	players map[string][]byte
}

// NewInMemoryPlayerRepository creates an empty in-memory store.
func NewInMemoryPlayerRepository() *InMemoryPlayerRepository {
	return &InMemoryPlayerRepository{
		players: make(map[string][]byte),
	}
}

// Load returns a copy of the stored aggregate, or nil if none exists.
func (r *InMemoryPlayerRepository) Load(ctx context.Context, playerID string) (*domain.PlayerAggregate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	data, ok := r.players[playerID]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	var player domain.PlayerAggregate
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, errors.ErrDatabaseError("decode player", err)
	}
	return &player, nil
}

// Save stores a copy of the aggregate.
func (r *InMemoryPlayerRepository) Save(ctx context.Context, player *domain.PlayerAggregate) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if stored := r.storedVersion(player.PlayerID); stored != player.Version {
		return errors.ErrVersionConflict(player.PlayerID, player.Version)
	}

	next := *player
	next.Version++
	data, err := json.Marshal(&next)
	if err != nil {
		return errors.ErrDatabaseError("encode player", err)
	}

	r.players[player.PlayerID] = data
	player.Version = next.Version
	return nil
}

// storedVersion returns the version currently held for playerID (0 if absent).
// Caller must hold the lock.
func (r *InMemoryPlayerRepository) storedVersion(playerID string) int64 {
	data, ok := r.players[playerID]
	if !ok {
		return 0
	}
	var header struct {
		Version int64 `json:"version"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return -1
	}
	return header.Version
}
