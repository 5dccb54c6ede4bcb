package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/romanzh1/skillpath/internal/models"
)

// UpsertProgress inserts or replaces the completion state for one roadmap
// point. The (account_id, roadmap_id, point_id) unique constraint plus
// ON CONFLICT keeps concurrent calls from ever producing duplicate rows.
func (r *Postgres) UpsertProgress(ctx context.Context, entry *models.Progress) (*models.Progress, error) {
	query := r.psql.Insert("progress").
		Columns("id", "account_id", "roadmap_id", "point_id", "is_completed", "completed_at", "created_at").
		Values(entry.ID, entry.AccountID, entry.RoadmapID, entry.PointID, entry.IsCompleted, entry.CompletedAt, entry.CreatedAt).
		Suffix(`ON CONFLICT (account_id, roadmap_id, point_id) DO UPDATE
			SET is_completed = EXCLUDED.is_completed, completed_at = EXCLUDED.completed_at
			RETURNING id, account_id, roadmap_id, point_id, is_completed, completed_at, created_at, updated_at`)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build SQL query (account_id: %s, point_id: %s): %w", entry.AccountID, entry.PointID, err)
	}

	var saved models.Progress
	if err = r.GetContext(ctx, &saved, sql, args...); err != nil {
		return nil, fmt.Errorf("upsert progress (account_id: %s, roadmap_id: %s, point_id: %s): %w",
			entry.AccountID, entry.RoadmapID, entry.PointID, dbError(err))
	}

	return &saved, nil
}

func (r *Postgres) ListProgress(ctx context.Context, accountID, roadmapID uuid.UUID) ([]*models.Progress, error) {
	query := `
		SELECT id, account_id, roadmap_id, point_id, is_completed, completed_at, created_at, updated_at
		FROM progress
		WHERE account_id = $1 AND roadmap_id = $2
		ORDER BY created_at ASC
	`

	var entries []*models.Progress
	if err := r.SelectContext(ctx, &entries, query, accountID, roadmapID); err != nil {
		return nil, fmt.Errorf("list progress (account_id: %s, roadmap_id: %s): %w", accountID, roadmapID, dbError(err))
	}

	return entries, nil
}
