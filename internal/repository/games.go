package repository

import (
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/domain"
)

const selectGamesQuery = `
	SELECT
		g.id,
		g.name,
		g.innings,
		g.max_primary_on_field,
		g.mode,
		g.played_at,
		g.created_at,
		g.version,
		gp.player_id
	FROM games g
	LEFT JOIN game_players gp ON g.id = gp.game_id
`

func scanGames(rows *sql.Rows) ([]*domain.Game, error) {
	gamesMap := make(map[int64]*domain.Game)
	games := make([]*domain.Game, 0)

	for rows.Next() {
		var row struct {
			game     domain.Game
			playerID sql.NullInt64
		}

		dst := []any{
			&row.game.ID,
			&row.game.Name,
			&row.game.Innings,
			&row.game.MaxPrimaryOnField,
			&row.game.Mode,
			&row.game.PlayedAt,
			&row.game.CreatedAt,
			&row.game.Version,
			&row.playerID,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		game, exists := gamesMap[row.game.ID]
		if !exists {
			game = &row.game
			game.PlayerIDs = make([]int64, 0)
			gamesMap[game.ID] = game
			games = append(games, game)
		}

		if !row.playerID.Valid {
			continue
		}
		game.PlayerIDs = append(game.PlayerIDs, row.playerID.Int64)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return games, nil
}

func (r *Repository) GetAllGames() ([]*domain.Game, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, selectGamesQuery+` ORDER BY g.played_at DESC, g.id, gp.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanGames(rows)
}

func (r *Repository) GetGameByID(id int64) (*domain.Game, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, selectGamesQuery+` WHERE g.id = $1 ORDER BY gp.id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games, err := scanGames(rows)
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, sql.ErrNoRows
	}

	return games[0], nil
}

// CreateGame 按照 PlayerIDs 的顺序写入出场球员，读取时顺序保持不变
func (r *Repository) CreateGame(game *domain.Game) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if game.PlayedAt.IsZero() {
		game.PlayedAt = time.Now()
	}

	query := `
		INSERT INTO games (name, innings, max_primary_on_field, mode, played_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version
	`

	args := []any{game.Name, game.Innings, game.MaxPrimaryOnField, game.Mode, game.PlayedAt}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&game.ID, &game.CreatedAt, &game.Version); err != nil {
		return err
	}

	for _, playerID := range game.PlayerIDs {
		query := `
			INSERT INTO game_players (game_id, player_id)
			VALUES ($1, $2)
		`
		if _, err := tx.ExecContext(ctx, query, game.ID, playerID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// DeleteGame 会级联删除出场名单和已生成的阵容
func (r *Repository) DeleteGame(id int64) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, `DELETE FROM games WHERE id = $1`, id); err != nil {
		return err
	}

	return nil
}
