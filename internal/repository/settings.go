package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/romanzh1/skillpath/internal/models"
)

func (r *Postgres) GetSettings(ctx context.Context, accountID uuid.UUID) (*models.Settings, error) {
	query := `
		SELECT id, account_id, display_name, bio, theme, roadmap_depth, video_length, created_at, updated_at
		FROM settings WHERE account_id = $1
	`

	var settings models.Settings
	if err := r.GetContext(ctx, &settings, query, accountID); err != nil {
		return nil, fmt.Errorf("get settings (account_id: %s): %w", accountID, dbError(err))
	}

	return &settings, nil
}

// UpsertSettings replaces the whole settings record. The unique constraint on
// account_id keeps it one row per account.
func (r *Postgres) UpsertSettings(ctx context.Context, settings *models.Settings) (*models.Settings, error) {
	query := r.psql.Insert("settings").
		Columns("id", "account_id", "display_name", "bio", "theme", "roadmap_depth", "video_length", "created_at").
		Values(settings.ID, settings.AccountID, settings.DisplayName, settings.Bio,
			settings.Theme, settings.RoadmapDepth, settings.VideoLength, settings.CreatedAt).
		Suffix(`ON CONFLICT (account_id) DO UPDATE
			SET display_name = EXCLUDED.display_name, bio = EXCLUDED.bio, theme = EXCLUDED.theme,
			    roadmap_depth = EXCLUDED.roadmap_depth, video_length = EXCLUDED.video_length
			RETURNING id, account_id, display_name, bio, theme, roadmap_depth, video_length, created_at, updated_at`)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build SQL query (account_id: %s): %w", settings.AccountID, err)
	}

	var saved models.Settings
	if err = r.GetContext(ctx, &saved, sql, args...); err != nil {
		return nil, fmt.Errorf("upsert settings (account_id: %s): %w", settings.AccountID, dbError(err))
	}

	return &saved, nil
}
