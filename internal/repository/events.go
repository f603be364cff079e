package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
)

func (r *Repository) CreateEvent(event *domain.Event) error {
	query := `
		INSERT INTO events (name, description, organizer_id, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	params := []any{event.Name, event.Description, event.OrganizerID, event.StartTime, event.EndTime}
	dst := []any{&event.ID, &event.CreatedAt, &event.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAllEvents() ([]*domain.Event, error) {
	query := `
		SELECT id, name, description, organizer_id, start_time, end_time, created_at, version
		FROM events
		ORDER BY start_time DESC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []*domain.Event{}
	for rows.Next() {
		var event domain.Event
		dst := []any{
			&event.ID,
			&event.Name,
			&event.Description,
			&event.OrganizerID,
			&event.StartTime,
			&event.EndTime,
			&event.CreatedAt,
			&event.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

func (r *Repository) GetEventByID(id int64) (*domain.Event, error) {
	query := `
		SELECT name, description, organizer_id, start_time, end_time, created_at, version
		FROM events
		WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	event := &domain.Event{
		ID: id,
	}

	dst := []any{
		&event.Name,
		&event.Description,
		&event.OrganizerID,
		&event.StartTime,
		&event.EndTime,
		&event.CreatedAt,
		&event.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return event, nil
}

// UpdateEvent 使用乐观锁，版本号不匹配时返回 sql.ErrNoRows
func (r *Repository) UpdateEvent(event *domain.Event) error {
	query := `
		UPDATE events
		SET
			name = $1,
			description = $2,
			start_time = $3,
			end_time = $4,
			version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	params := []any{event.Name, event.Description, event.StartTime, event.EndTime, event.ID, event.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&event.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteEvent(id int64) error {
	query := `
		DELETE FROM events WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
