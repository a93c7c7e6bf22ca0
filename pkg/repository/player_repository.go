package repository

import (
	"context"

	"github.com/AccelByte/extend-rpg-localserver/pkg/domain"
)

// PlayerRepository persists whole player aggregates.
// Implementations use optimistic concurrency on PlayerAggregate.Version.
type PlayerRepository interface {
	// Load retrieves a player's aggregate.
	// Returns nil if the player has never been saved (lazy initialization).
	Load(ctx context.Context, playerID string) (*domain.PlayerAggregate, error)

	// Save stores the aggregate and increments its Version on success.
	//
	// The aggregate's Version must match the stored version (0 for a player
	// that was never saved); otherwise Save returns a VERSION_CONFLICT error
	// and leaves both the store and the aggregate unchanged.
	Save(ctx context.Context, player *domain.PlayerAggregate) error
}
