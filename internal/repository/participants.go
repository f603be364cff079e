package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
)

// InsertParticipants 在同一个事务中批量插入参与者，任意一个失败则全部回滚
func (r *Repository) InsertParticipants(participants []*domain.Participant) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO participants (event_id, username, ehp, ehb, timezone, daily_hours)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, version
	`

	for _, p := range participants {
		params := []any{p.EventID, p.Username, p.Metadata.EHP, p.Metadata.EHB, p.Metadata.Timezone, p.Metadata.DailyHours}
		if err := tx.QueryRowContext(ctx, query, params...).Scan(&p.ID, &p.CreatedAt, &p.Version); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetParticipantsByEventID(eventID int64) ([]*domain.Participant, error) {
	query := `
		SELECT id, username, ehp, ehb, timezone, daily_hours, created_at, version
		FROM participants
		WHERE event_id = $1
		ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := []*domain.Participant{}
	for rows.Next() {
		p := &domain.Participant{
			EventID: eventID,
		}
		dst := []any{
			&p.ID,
			&p.Username,
			&p.Metadata.EHP,
			&p.Metadata.EHB,
			&p.Metadata.Timezone,
			&p.Metadata.DailyHours,
			&p.CreatedAt,
			&p.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return participants, nil
}

func (r *Repository) GetParticipantByID(id int64) (*domain.Participant, error) {
	query := `
		SELECT event_id, username, ehp, ehb, timezone, daily_hours, created_at, version
		FROM participants
		WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	p := &domain.Participant{
		ID: id,
	}

	dst := []any{
		&p.EventID,
		&p.Username,
		&p.Metadata.EHP,
		&p.Metadata.EHB,
		&p.Metadata.Timezone,
		&p.Metadata.DailyHours,
		&p.CreatedAt,
		&p.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return p, nil
}

// UpdateParticipant 只更新用户名和元数据，版本号不匹配时返回 sql.ErrNoRows
func (r *Repository) UpdateParticipant(p *domain.Participant) error {
	query := `
		UPDATE participants
		SET
			username = $1,
			ehp = $2,
			ehb = $3,
			timezone = $4,
			daily_hours = $5,
			version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	params := []any{
		p.Username,
		p.Metadata.EHP,
		p.Metadata.EHB,
		p.Metadata.Timezone,
		p.Metadata.DailyHours,
		p.ID,
		p.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&p.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteParticipant(id int64) error {
	query := `
		DELETE FROM participants WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
