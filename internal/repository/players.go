package repository

import (
	"context"
	"database/sql"

	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/domain"
)

const selectPlayersQuery = `
	SELECT
		p.id,
		p.name,
		p.category,
		p.skill,
		p.is_active,
		p.created_at,
		p.version,
		pp.token
	FROM players p
	LEFT JOIN player_positions pp ON p.id = pp.player_id
`

// scanPlayers 将 LEFT JOIN 的结果按球员聚合，保持查询结果中球员出现的顺序
func scanPlayers(rows *sql.Rows) ([]*domain.Player, error) {
	playersMap := make(map[int64]*domain.Player)
	players := make([]*domain.Player, 0)

	for rows.Next() {
		var row struct {
			player domain.Player
			token  sql.NullString
		}

		dst := []any{
			&row.player.ID,
			&row.player.Name,
			&row.player.Category,
			&row.player.Skill,
			&row.player.IsActive,
			&row.player.CreatedAt,
			&row.player.Version,
			&row.token,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		player, exists := playersMap[row.player.ID]
		if !exists {
			player = &row.player
			player.Positions = make([]string, 0)
			playersMap[player.ID] = player
			players = append(players, player)
		}

		if !row.token.Valid {
			// 说明这个球员没有填写任何位置
			continue
		}
		player.Positions = append(player.Positions, row.token.String)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return players, nil
}

func (r *Repository) GetAllPlayers() ([]*domain.Player, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, selectPlayersQuery+` ORDER BY p.id, pp.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPlayers(rows)
}

// GetPlayersByIDs 返回的球员顺序与 ids 一致，有任何一个不存在时返回 sql.ErrNoRows
func (r *Repository) GetPlayersByIDs(ids []int64) ([]*domain.Player, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, selectPlayersQuery+` WHERE p.id = ANY($1) ORDER BY p.id, pp.id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found, err := scanPlayers(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*domain.Player, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	players := make([]*domain.Player, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, sql.ErrNoRows
		}
		players = append(players, p)
	}

	return players, nil
}

func (r *Repository) GetPlayerByID(id int64) (*domain.Player, error) {
	players, err := r.GetPlayersByIDs([]int64{id})
	if err != nil {
		return nil, err
	}
	return players[0], nil
}

func insertPlayerPositions(ctx context.Context, tx *sql.Tx, player *domain.Player) error {
	for _, token := range player.Positions {
		query := `
			INSERT INTO player_positions (player_id, token)
			VALUES ($1, $2)
		`
		if _, err := tx.ExecContext(ctx, query, player.ID, token); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) CreatePlayer(player *domain.Player) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO players (name, category, skill)
		VALUES ($1, $2, $3)
		RETURNING id, is_active, created_at, version
	`

	args := []any{player.Name, player.Category, player.Skill}
	dst := []any{&player.ID, &player.IsActive, &player.CreatedAt, &player.Version}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	if err := insertPlayerPositions(ctx, tx, player); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repository) UpdatePlayer(player *domain.Player) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE players
		SET
			name = $1,
			category = $2,
			skill = $3,
			is_active = $4,
			version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING version
	`

	args := []any{player.Name, player.Category, player.Skill, player.IsActive, player.ID, player.Version}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&player.Version); err != nil {
		return err
	}

	// 位置直接整体替换
	if _, err := tx.ExecContext(ctx, `DELETE FROM player_positions WHERE player_id = $1`, player.ID); err != nil {
		return err
	}
	if err := insertPlayerPositions(ctx, tx, player); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repository) DeletePlayer(id int64) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id); err != nil {
		return err
	}

	return nil
}
