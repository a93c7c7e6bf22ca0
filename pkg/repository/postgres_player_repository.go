package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/AccelByte/extend-rpg-localserver/pkg/domain"
	"github.com/AccelByte/extend-rpg-localserver/pkg/errors"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresPlayerRepository implements PlayerRepository using PostgreSQL.
// The aggregate is stored as a JSONB document next to its version column
// (see db.Schema).
type PostgresPlayerRepository struct {
	db *sql.DB
}

// NewPostgresPlayerRepository creates a new PostgreSQL-backed player repository.
func NewPostgresPlayerRepository(db *sql.DB) *PostgresPlayerRepository {
	return &PostgresPlayerRepository{
		db: db,
	}
}

// Load retrieves a player's aggregate.
func (r *PostgresPlayerRepository) Load(ctx context.Context, playerID string) (*domain.PlayerAggregate, error) {
	query := `
		SELECT data, version
		FROM player_aggregates
		WHERE player_id = $1
	`

	var (
		data    []byte
		version int64
	)
	err := r.db.QueryRowContext(ctx, query, playerID).Scan(&data, &version)
	if err == sql.ErrNoRows {
		return nil, nil // Player never saved
	}
	if err != nil {
		return nil, errors.ErrDatabaseError("load player", err)
	}

	var player domain.PlayerAggregate
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, errors.ErrDatabaseError("decode player", err)
	}
	// The column is authoritative; the document copy may lag behind.
	player.Version = version

	return &player, nil
}

// Save inserts a new player (Version 0) or updates an existing one guarded by
// its version.
func (r *PostgresPlayerRepository) Save(ctx context.Context, player *domain.PlayerAggregate) error {
	next := *player
	next.Version++
	data, err := json.Marshal(&next)
	if err != nil {
		return errors.ErrDatabaseError("encode player", err)
	}

	// lib/pq sends []byte as bytea; JSONB needs the text form.
	var result sql.Result
	if player.Version == 0 {
		query := `
			INSERT INTO player_aggregates (player_id, data, version, updated_at)
			VALUES ($1, $2, 1, NOW())
			ON CONFLICT (player_id) DO NOTHING
		`
		result, err = r.db.ExecContext(ctx, query, player.PlayerID, string(data))
	} else {
		query := `
			UPDATE player_aggregates
			SET data = $3, version = version + 1, updated_at = NOW()
			WHERE player_id = $1 AND version = $2
		`
		result, err = r.db.ExecContext(ctx, query, player.PlayerID, player.Version, string(data))
	}
	if err != nil {
		return errors.ErrDatabaseError("save player", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.ErrDatabaseError("save player", err)
	}
	if rows == 0 {
		return errors.ErrVersionConflict(player.PlayerID, player.Version)
	}

	player.Version = next.Version
	return nil
}
