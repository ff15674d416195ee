package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/crownspire/mud/internal/game/character"
	"github.com/crownspire/mud/internal/game/encounter"
)

// ErrPlayerNameTaken is returned when creating a player with a name already in use.
var ErrPlayerNameTaken = errors.New("player name already taken")

// CreatePlayer inserts a new player record.
//
// Precondition: p must pass Validate.
// Postcondition: The row exists, or ErrPlayerNameTaken on a duplicate name.
func (s *Store) CreatePlayer(ctx context.Context, p *character.Player) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO players
			(id, name, class, level, exp, max_hp, current_hp, max_mp, current_mp,
			 stat_str, stat_dex, stat_int, stat_wis, stat_con, room_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		p.ID, p.Name, p.Class, p.Level, p.Exp,
		p.MaxHP, p.CurrentHP, p.MaxMP, p.CurrentMP,
		p.Stats.Str, p.Stats.Dex, p.Stats.Int, p.Stats.Wis, p.Stats.Con,
		p.RoomID, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrPlayerNameTaken
		}
		return fmt.Errorf("inserting player: %w", err)
	}
	return nil
}

// PlayerByName loads a player by exact name.
//
// Postcondition: Returns encounter.ErrNotFound when no player has that name.
func (s *Store) PlayerByName(ctx context.Context, name string) (*character.Player, error) {
	p, err := scanPlayer(s.db.QueryRow(ctx,
		`SELECT `+playerColumns+` FROM players WHERE name = $1`, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, encounter.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying player by name: %w", err)
	}
	return p, nil
}

// isDuplicateKeyError reports whether err is a PostgreSQL unique violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
