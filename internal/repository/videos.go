package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/romanzh1/skillpath/internal/models"
)

// UpsertVideoPage writes one playlist page, keyed by the full composite key.
// Re-writing an existing key replaces video_data; the row trigger bumps
// updated_at.
func (r *Postgres) UpsertVideoPage(ctx context.Context, page *models.VideoPage) (*models.VideoPage, error) {
	query := r.psql.Insert("video_pages").
		Columns("roadmap_id", "level", "page_number", "generation", "video_data", "created_at").
		Values(page.RoadmapID, page.Level, page.PageNumber, page.Generation, []byte(page.VideoData), page.CreatedAt).
		Suffix(`ON CONFLICT (roadmap_id, level, page_number, generation) DO UPDATE
			SET video_data = EXCLUDED.video_data
			RETURNING roadmap_id, level, page_number, generation, video_data, created_at, updated_at`)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build SQL query (roadmap_id: %s, level: %s, page: %d, generation: %d): %w",
			page.RoadmapID, page.Level, page.PageNumber, page.Generation, err)
	}

	var saved models.VideoPage
	if err = r.GetContext(ctx, &saved, sql, args...); err != nil {
		return nil, fmt.Errorf("upsert video page (roadmap_id: %s, level: %s, page: %d, generation: %d): %w",
			page.RoadmapID, page.Level, page.PageNumber, page.Generation, dbError(err))
	}

	return &saved, nil
}

// ListVideoPages returns the pages of exactly one generation, in page order.
func (r *Postgres) ListVideoPages(ctx context.Context, roadmapID uuid.UUID, level string, generation int) ([]*models.VideoPage, error) {
	query := `
		SELECT roadmap_id, level, page_number, generation, video_data, created_at, updated_at
		FROM video_pages
		WHERE roadmap_id = $1 AND level = $2 AND generation = $3
		ORDER BY page_number ASC
	`

	var pages []*models.VideoPage
	if err := r.SelectContext(ctx, &pages, query, roadmapID, level, generation); err != nil {
		return nil, fmt.Errorf("list video pages (roadmap_id: %s, level: %s, generation: %d): %w",
			roadmapID, level, generation, dbError(err))
	}

	return pages, nil
}

// LatestGeneration returns 0 when no pages exist for the (roadmap, level) pair.
func (r *Postgres) LatestGeneration(ctx context.Context, roadmapID uuid.UUID, level string) (int, error) {
	query := r.psql.Select("COALESCE(MAX(generation), 0)").
		From("video_pages").
		Where("roadmap_id = ? AND level = ?", roadmapID, level)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build SQL query (roadmap_id: %s, level: %s): %w", roadmapID, level, err)
	}

	var generation int
	if err = r.GetContext(ctx, &generation, sql, args...); err != nil {
		return 0, fmt.Errorf("get latest generation (roadmap_id: %s, level: %s): %w", roadmapID, level, dbError(err))
	}

	return generation, nil
}

func (r *Postgres) MaxPageNumber(ctx context.Context, roadmapID uuid.UUID, level string, generation int) (int, error) {
	query := r.psql.Select("COALESCE(MAX(page_number), 0)").
		From("video_pages").
		Where("roadmap_id = ? AND level = ? AND generation = ?", roadmapID, level, generation)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build SQL query (roadmap_id: %s, level: %s, generation: %d): %w", roadmapID, level, generation, err)
	}

	var maxPage int
	if err = r.GetContext(ctx, &maxPage, sql, args...); err != nil {
		return 0, fmt.Errorf("get max page number (roadmap_id: %s, level: %s, generation: %d): %w",
			roadmapID, level, generation, dbError(err))
	}

	return maxPage, nil
}

// DeleteGeneration prunes one generation's pages. Nothing ever deletes old
// generations implicitly; this is the explicit operation.
func (r *Postgres) DeleteGeneration(ctx context.Context, roadmapID uuid.UUID, level string, generation int) (int64, error) {
	query := r.psql.Delete("video_pages").
		Where("roadmap_id = ? AND level = ? AND generation = ?", roadmapID, level, generation)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build SQL query (roadmap_id: %s, level: %s, generation: %d): %w", roadmapID, level, generation, err)
	}

	res, err := r.ExecContext(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("delete generation (roadmap_id: %s, level: %s, generation: %d): %w",
			roadmapID, level, generation, dbError(err))
	}

	n, _ := res.RowsAffected()
	return n, nil
}
