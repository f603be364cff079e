package repository

import (
	"context"
	"database/sql"
	"slices"
	"time"

	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
)

// InsertBalancingRun 保存一次分队结果，同一个活动之前的结果会被删除
func (r *Repository) InsertBalancingRun(run *domain.BalancingRun) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// teams 和 team_members 通过外键级联删除
	query := `DELETE FROM balancing_runs WHERE event_id = $1`
	if _, err := tx.ExecContext(ctx, query, run.EventID); err != nil {
		return err
	}

	query = `
		INSERT INTO balancing_runs (
			event_id,
			preset,
			balanced,
			objective_score,
			teams_created,
			participants_assigned,
			iterations,
			termination,
			seed
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, version
	`

	params := []any{
		run.EventID,
		run.Preset,
		run.Balanced,
		run.ObjectiveScore,
		run.TeamsCreated,
		run.ParticipantsAssigned,
		run.Iterations,
		run.Termination,
		run.Seed,
	}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&run.ID, &run.CreatedAt, &run.Version); err != nil {
		return err
	}

	for i := range run.Teams {
		team := &run.Teams[i]

		query := `
			INSERT INTO teams (balancing_run_id, name, slot)
			VALUES ($1, $2, $3)
			RETURNING id
		`

		if err := tx.QueryRowContext(ctx, query, run.ID, team.Name, team.Slot).Scan(&team.ID); err != nil {
			return err
		}

		for _, participantID := range team.MemberIDs {
			query := `
				INSERT INTO team_members (team_id, participant_id)
				VALUES ($1, $2)
			`

			if _, err := tx.ExecContext(ctx, query, team.ID, participantID); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetBalancingRunByEventID(eventID int64) (*domain.BalancingRun, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			br.id,
			br.preset,
			br.balanced,
			br.objective_score,
			br.teams_created,
			br.participants_assigned,
			br.iterations,
			br.termination,
			br.seed,
			br.created_at,
			br.version,
			t.id,
			t.name,
			t.slot,
			tm.participant_id
		FROM balancing_runs br
		LEFT JOIN teams t ON br.id = t.balancing_run_id
		LEFT JOIN team_members tm ON t.id = tm.team_id
		WHERE br.event_id = $1
		ORDER BY t.slot, tm.participant_id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	run := &domain.BalancingRun{
		EventID: eventID,
	}

	teamsMap := make(map[int64]*domain.Team) // teamID -> team

	for rows.Next() {
		var row struct {
			teamID        sql.NullInt64
			teamName      sql.NullString
			teamSlot      sql.NullInt32
			participantID sql.NullInt64
		}

		dst := []any{
			&run.ID,
			&run.Preset,
			&run.Balanced,
			&run.ObjectiveScore,
			&run.TeamsCreated,
			&run.ParticipantsAssigned,
			&run.Iterations,
			&run.Termination,
			&run.Seed,
			&run.CreatedAt,
			&run.Version,
			&row.teamID,
			&row.teamName,
			&row.teamSlot,
			&row.participantID,
		}

		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if !row.teamID.Valid {
			continue
		}

		team, exists := teamsMap[row.teamID.Int64]
		if !exists {
			team = &domain.Team{
				ID:        row.teamID.Int64,
				Name:      row.teamName.String,
				Slot:      row.teamSlot.Int32,
				MemberIDs: make([]int64, 0),
			}
			teamsMap[row.teamID.Int64] = team
		}

		if !row.participantID.Valid {
			// 空队伍，只有在参与者被删除后才会出现
			continue
		}

		team.MemberIDs = append(team.MemberIDs, row.participantID.Int64)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if run.ID == 0 {
		return nil, sql.ErrNoRows
	}

	run.Teams = make([]domain.Team, 0, len(teamsMap))
	for _, team := range teamsMap {
		run.Teams = append(run.Teams, *team)
	}
	slices.SortFunc(run.Teams, func(a, b domain.Team) int {
		return int(a.Slot - b.Slot)
	})

	return run, nil
}
