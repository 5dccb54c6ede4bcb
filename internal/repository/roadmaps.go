package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/romanzh1/skillpath/internal/models"
)

func (r *Postgres) CreateRoadmap(ctx context.Context, roadmap *models.Roadmap) error {
	query := r.psql.Insert("roadmaps").
		Columns("id", "topic_id", "roadmap_data", "created_at", "updated_at").
		Values(roadmap.ID, roadmap.TopicID, []byte(roadmap.Data), roadmap.CreatedAt, roadmap.CreatedAt)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build SQL query (topic_id: %s): %w", roadmap.TopicID, err)
	}

	if _, err = r.ExecContext(ctx, sql, args...); err != nil {
		return fmt.Errorf("create roadmap (topic_id: %s): %w", roadmap.TopicID, dbError(err))
	}
	return nil
}

// UpdateRoadmapData replaces the stored document in place. updated_at is
// bumped by the row trigger, not here.
func (r *Postgres) UpdateRoadmapData(ctx context.Context, id uuid.UUID, data json.RawMessage) (*models.Roadmap, error) {
	query := `
		UPDATE roadmaps SET roadmap_data = $2
		WHERE id = $1
		RETURNING id, topic_id, roadmap_data, created_at, updated_at
	`

	var roadmap models.Roadmap
	if err := r.GetContext(ctx, &roadmap, query, id, []byte(data)); err != nil {
		return nil, fmt.Errorf("update roadmap data (roadmap_id: %s): %w", id, dbError(err))
	}

	return &roadmap, nil
}

func (r *Postgres) GetRoadmap(ctx context.Context, id uuid.UUID) (*models.Roadmap, error) {
	query := `
		SELECT id, topic_id, roadmap_data, created_at, updated_at
		FROM roadmaps WHERE id = $1
	`

	var roadmap models.Roadmap
	if err := r.GetContext(ctx, &roadmap, query, id); err != nil {
		return nil, fmt.Errorf("get roadmap (id: %s): %w", id, dbError(err))
	}

	return &roadmap, nil
}

func (r *Postgres) GetLatestRoadmapByTopic(ctx context.Context, topicID uuid.UUID) (*models.Roadmap, error) {
	query := `
		SELECT id, topic_id, roadmap_data, created_at, updated_at
		FROM roadmaps
		WHERE topic_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var roadmap models.Roadmap
	if err := r.GetContext(ctx, &roadmap, query, topicID); err != nil {
		return nil, fmt.Errorf("get latest roadmap (topic_id: %s): %w", topicID, dbError(err))
	}

	return &roadmap, nil
}

func (r *Postgres) ListRoadmapsByTopic(ctx context.Context, topicID uuid.UUID) ([]*models.Roadmap, error) {
	query := `
		SELECT id, topic_id, roadmap_data, created_at, updated_at
		FROM roadmaps
		WHERE topic_id = $1
		ORDER BY created_at ASC
	`

	var roadmaps []*models.Roadmap
	if err := r.SelectContext(ctx, &roadmaps, query, topicID); err != nil {
		return nil, fmt.Errorf("list roadmaps (topic_id: %s): %w", topicID, dbError(err))
	}

	return roadmaps, nil
}

// GetRoadmapOwner resolves the account a roadmap ultimately belongs to,
// for ownership checks on progress and playlist operations.
func (r *Postgres) GetRoadmapOwner(ctx context.Context, roadmapID uuid.UUID) (uuid.UUID, error) {
	query := `
		SELECT t.account_id
		FROM roadmaps rm
		JOIN topics t ON t.id = rm.topic_id
		WHERE rm.id = $1
	`

	var accountID uuid.UUID
	if err := r.GetContext(ctx, &accountID, query, roadmapID); err != nil {
		return uuid.Nil, fmt.Errorf("get roadmap owner (roadmap_id: %s): %w", roadmapID, dbError(err))
	}

	return accountID, nil
}

func (r *Postgres) DeleteRoadmap(ctx context.Context, id uuid.UUID) error {
	query := r.psql.Delete("roadmaps").Where("id = ?", id)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build SQL query (roadmap_id: %s): %w", id, err)
	}

	res, err := r.ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete roadmap (roadmap_id: %s): %w", id, dbError(err))
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete roadmap (roadmap_id: %s): %w", id, models.ErrNotFound)
	}
	return nil
}
