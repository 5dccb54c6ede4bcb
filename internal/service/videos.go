package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/romanzh1/skillpath/internal/models"
	"github.com/romanzh1/skillpath/pkg/generator"
	"github.com/romanzh1/skillpath/pkg/utils"
	"go.uber.org/zap"
)

func isNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}

// WritePage stores one playlist page. Page numbers within a generation must
// stay contiguous: overwriting an existing page is always allowed, appending
// is allowed, a write that would leave a gap is rejected. The check and the
// write run in one transaction so concurrent writers cannot slip a gap in.
func (s *Service) WritePage(ctx context.Context, accountID, roadmapID uuid.UUID, level string, pageNumber, generation int, videoData json.RawMessage) (*models.VideoPage, error) {
	if level == "" {
		return nil, fmt.Errorf("level is required: %w", models.ErrInvalidArgument)
	}
	if pageNumber <= 0 || generation <= 0 {
		return nil, fmt.Errorf("page number and generation must be positive: %w", models.ErrInvalidArgument)
	}
	if len(videoData) == 0 || !json.Valid(videoData) {
		return nil, fmt.Errorf("video data must be valid JSON: %w", models.ErrInvalidArgument)
	}

	if err := s.checkRoadmapOwnership(ctx, accountID, roadmapID); err != nil {
		return nil, err
	}

	var saved *models.VideoPage
	err := s.repo.RunInTx(ctx, func(tx models.Repository) error {
		maxPage, err := tx.MaxPageNumber(ctx, roadmapID, level, generation)
		if err != nil {
			return err
		}
		if pageNumber > maxPage+1 {
			return fmt.Errorf("page %d would leave a gap after page %d (roadmap_id: %s, level: %s, generation: %d): %w",
				pageNumber, maxPage, roadmapID, level, generation, models.ErrInvalidArgument)
		}

		saved, err = tx.UpsertVideoPage(ctx, &models.VideoPage{
			RoadmapID:  roadmapID,
			Level:      level,
			PageNumber: pageNumber,
			Generation: generation,
			VideoData:  videoData,
			CreatedAt:  utils.NowUTC(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return saved, nil
}

// RegeneratePlaylist produces a fresh playlist for a level under the next
// generation number. Pages of every earlier generation stay untouched;
// pruning them is only ever the explicit PruneGeneration call.
func (s *Service) RegeneratePlaylist(ctx context.Context, accountID, roadmapID uuid.UUID, level string) ([]*models.VideoPage, error) {
	if level == "" {
		return nil, fmt.Errorf("level is required: %w", models.ErrInvalidArgument)
	}

	if err := s.checkRoadmapOwnership(ctx, accountID, roadmapID); err != nil {
		return nil, err
	}

	roadmap, err := s.repo.GetRoadmap(ctx, roadmapID)
	if err != nil {
		return nil, err
	}
	topic, err := s.repo.GetTopic(ctx, roadmap.TopicID)
	if err != nil {
		return nil, err
	}
	settings, err := s.GetSettings(ctx, accountID)
	if err != nil {
		return nil, err
	}

	pageData, err := s.generator.GenerateVideoPages(ctx, generator.PlaylistRequest{
		Topic:       topic.Label,
		Level:       level,
		VideoLength: string(settings.VideoLength),
		PageSize:    s.cfg.PlaylistPageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("regenerate playlist (roadmap_id: %s, level: %s): %w", roadmapID, level, err)
	}
	if len(pageData) == 0 {
		return nil, fmt.Errorf("generator returned no pages (roadmap_id: %s, level: %s)", roadmapID, level)
	}

	var pages []*models.VideoPage
	err = s.repo.RunInTx(ctx, func(tx models.Repository) error {
		latest, err := tx.LatestGeneration(ctx, roadmapID, level)
		if err != nil {
			return err
		}
		generation := latest + 1

		now := utils.NowUTC()
		for i, data := range pageData {
			page, err := tx.UpsertVideoPage(ctx, &models.VideoPage{
				RoadmapID:  roadmapID,
				Level:      level,
				PageNumber: i + 1,
				Generation: generation,
				VideoData:  data,
				CreatedAt:  now,
			})
			if err != nil {
				return err
			}
			pages = append(pages, page)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.S().Infow("playlist regenerated",
		"roadmap_id", roadmapID, "level", level, "generation", pages[0].Generation, "pages", len(pages))
	return pages, nil
}

// ListPages returns the pages of exactly one generation. Callers wanting the
// current playlist resolve LatestGeneration first.
func (s *Service) ListPages(ctx context.Context, accountID, roadmapID uuid.UUID, level string, generation int) ([]*models.VideoPage, error) {
	if level == "" {
		return nil, fmt.Errorf("level is required: %w", models.ErrInvalidArgument)
	}
	if generation <= 0 {
		return nil, fmt.Errorf("generation must be positive: %w", models.ErrInvalidArgument)
	}

	if err := s.checkRoadmapOwnership(ctx, accountID, roadmapID); err != nil {
		return nil, err
	}
	return s.repo.ListVideoPages(ctx, roadmapID, level, generation)
}

// LatestGeneration returns 0 when the level has no pages yet.
func (s *Service) LatestGeneration(ctx context.Context, accountID, roadmapID uuid.UUID, level string) (int, error) {
	if err := s.checkRoadmapOwnership(ctx, accountID, roadmapID); err != nil {
		return 0, err
	}
	return s.repo.LatestGeneration(ctx, roadmapID, level)
}

// NextGeneration is a read-only preview; the number is resolved again inside
// the regeneration transaction before anything is written.
func (s *Service) NextGeneration(ctx context.Context, accountID, roadmapID uuid.UUID, level string) (int, error) {
	latest, err := s.LatestGeneration(ctx, accountID, roadmapID, level)
	if err != nil {
		return 0, err
	}
	return latest + 1, nil
}

// PruneGeneration deletes one generation's pages. This is the only way old
// generations ever go away short of deleting the roadmap itself.
func (s *Service) PruneGeneration(ctx context.Context, accountID, roadmapID uuid.UUID, level string, generation int) error {
	if generation <= 0 {
		return fmt.Errorf("generation must be positive: %w", models.ErrInvalidArgument)
	}

	if err := s.checkRoadmapOwnership(ctx, accountID, roadmapID); err != nil {
		return err
	}

	deleted, err := s.repo.DeleteGeneration(ctx, roadmapID, level, generation)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return fmt.Errorf("no pages (roadmap_id: %s, level: %s, generation: %d): %w",
			roadmapID, level, generation, models.ErrNotFound)
	}

	zap.S().Infow("generation pruned", "roadmap_id", roadmapID, "level", level, "generation", generation, "pages", deleted)
	return nil
}
