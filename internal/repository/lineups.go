package repository

import (
	"database/sql"
	"sort"
	"time"

	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/domain"
)

func (r *Repository) InsertLineup(lineup *domain.Lineup) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 每场比赛只保留最近一次生成的阵容
	query := `DELETE FROM lineups WHERE game_id = $1`
	if _, err := tx.ExecContext(ctx, query, lineup.GameID); err != nil {
		return err
	}

	query = `
		INSERT INTO lineups (game_id, run_id, cost)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, version
	`

	if err := tx.QueryRowContext(ctx, query, lineup.GameID, lineup.RunID, lineup.Cost).Scan(&lineup.ID, &lineup.CreatedAt, &lineup.Version); err != nil {
		return err
	}
	lineup.PublishedAt = nil

	for _, inning := range lineup.Innings {
		for _, a := range inning.Assignments {
			query := `
				INSERT INTO lineup_assignments (lineup_id, inning, player_id, position)
				VALUES ($1, $2, $3, $4)
			`
			if _, err := tx.ExecContext(ctx, query, lineup.ID, inning.Inning, a.PlayerID, a.Position); err != nil {
				return err
			}
		}
	}

	for _, batter := range lineup.BattingOrder {
		query := `
			INSERT INTO lineup_batters (lineup_id, slot, player_id)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.ExecContext(ctx, query, lineup.ID, batter.Slot, batter.PlayerID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetLineupByGameID(gameID int64) (*domain.Lineup, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	lineup := &domain.Lineup{
		GameID: gameID,
	}

	query := `
		SELECT id, run_id, cost, published_at, created_at, version
		FROM lineups
		WHERE game_id = $1
	`

	var publishedAt sql.NullTime
	dst := []any{&lineup.ID, &lineup.RunID, &lineup.Cost, &publishedAt, &lineup.CreatedAt, &lineup.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, gameID).Scan(dst...); err != nil {
		return nil, err
	}
	if publishedAt.Valid {
		lineup.PublishedAt = &publishedAt.Time
	}

	query = `
		SELECT inning, player_id, position
		FROM lineup_assignments
		WHERE lineup_id = $1
		ORDER BY inning, id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, lineup.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	inningsMap := make(map[int32]*domain.LineupInning)
	for rows.Next() {
		var inning int32
		var a domain.LineupAssignment
		if err := rows.Scan(&inning, &a.PlayerID, &a.Position); err != nil {
			return nil, err
		}

		if _, exists := inningsMap[inning]; !exists {
			inningsMap[inning] = &domain.LineupInning{
				Inning:      inning,
				Assignments: make([]domain.LineupAssignment, 0),
			}
		}
		inningsMap[inning].Assignments = append(inningsMap[inning].Assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lineup.Innings = make([]domain.LineupInning, 0, len(inningsMap))
	for _, inning := range inningsMap {
		lineup.Innings = append(lineup.Innings, *inning)
	}
	sort.Slice(lineup.Innings, func(i, j int) bool {
		return lineup.Innings[i].Inning < lineup.Innings[j].Inning
	})

	query = `
		SELECT slot, player_id
		FROM lineup_batters
		WHERE lineup_id = $1
		ORDER BY slot
	`

	batterRows, err := r.dbpool.QueryContext(ctx, query, lineup.ID)
	if err != nil {
		return nil, err
	}
	defer batterRows.Close()

	lineup.BattingOrder = make([]domain.LineupBatter, 0)
	for batterRows.Next() {
		var batter domain.LineupBatter
		var playerID sql.NullInt64
		if err := batterRows.Scan(&batter.Slot, &playerID); err != nil {
			return nil, err
		}
		if playerID.Valid {
			id := playerID.Int64
			batter.PlayerID = &id
		}
		lineup.BattingOrder = append(lineup.BattingOrder, batter)
	}
	if err := batterRows.Err(); err != nil {
		return nil, err
	}

	return lineup, nil
}

func (r *Repository) MarkLineupPublished(lineup *domain.Lineup) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		UPDATE lineups
		SET
			published_at = $1,
			version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING version
	`

	now := time.Now()
	if err := r.dbpool.QueryRowContext(ctx, query, now, lineup.ID, lineup.Version).Scan(&lineup.Version); err != nil {
		return err
	}
	lineup.PublishedAt = &now

	return nil
}
