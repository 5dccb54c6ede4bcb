package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/romanzh1/skillpath/internal/models"
	"github.com/romanzh1/skillpath/pkg/utils"
	"go.uber.org/zap"
)

// GenerateRoadmap asks the generator for a curriculum for the topic, using
// the account's preferred depth, and stores the result under the configured
// roadmap policy.
func (s *Service) GenerateRoadmap(ctx context.Context, accountID, topicID uuid.UUID) (*models.Roadmap, error) {
	topic, err := s.ownedTopic(ctx, accountID, topicID)
	if err != nil {
		return nil, err
	}

	settings, err := s.GetSettings(ctx, accountID)
	if err != nil {
		return nil, err
	}

	document, err := s.generator.GenerateRoadmap(ctx, topic.Label, string(settings.RoadmapDepth))
	if err != nil {
		return nil, fmt.Errorf("generate roadmap (topic_id: %s): %w", topicID, err)
	}

	roadmap, err := s.storeRoadmap(ctx, topicID, document)
	if err != nil {
		return nil, err
	}

	zap.S().Infow("roadmap generated", "topic_id", topicID, "roadmap_id", roadmap.ID, "depth", settings.RoadmapDepth)
	return roadmap, nil
}

// UpsertRoadmap stores a caller-supplied document for the topic. The document
// is opaque: it only has to be JSON, its structure is never inspected.
func (s *Service) UpsertRoadmap(ctx context.Context, accountID, topicID uuid.UUID, document json.RawMessage) (*models.Roadmap, error) {
	if len(document) == 0 || !json.Valid(document) {
		return nil, fmt.Errorf("roadmap document must be valid JSON: %w", models.ErrInvalidArgument)
	}

	if _, err := s.ownedTopic(ctx, accountID, topicID); err != nil {
		return nil, err
	}

	return s.storeRoadmap(ctx, topicID, document)
}

func (s *Service) storeRoadmap(ctx context.Context, topicID uuid.UUID, document json.RawMessage) (*models.Roadmap, error) {
	if s.cfg.RoadmapPolicy == RoadmapPolicyReplace {
		latest, err := s.repo.GetLatestRoadmapByTopic(ctx, topicID)
		if err == nil {
			return s.repo.UpdateRoadmapData(ctx, latest.ID, document)
		}
		if !isNotFound(err) {
			return nil, err
		}
	}

	roadmap := &models.Roadmap{
		ID:        uuid.New(),
		TopicID:   topicID,
		Data:      document,
		CreatedAt: utils.NowUTC(),
	}
	roadmap.UpdatedAt = roadmap.CreatedAt

	if err := s.repo.CreateRoadmap(ctx, roadmap); err != nil {
		return nil, err
	}
	return roadmap, nil
}

func (s *Service) GetRoadmap(ctx context.Context, accountID, roadmapID uuid.UUID) (*models.Roadmap, error) {
	if err := s.checkRoadmapOwnership(ctx, accountID, roadmapID); err != nil {
		return nil, err
	}
	return s.repo.GetRoadmap(ctx, roadmapID)
}

func (s *Service) ListRoadmaps(ctx context.Context, accountID, topicID uuid.UUID) ([]*models.Roadmap, error) {
	if _, err := s.ownedTopic(ctx, accountID, topicID); err != nil {
		return nil, err
	}
	return s.repo.ListRoadmapsByTopic(ctx, topicID)
}

func (s *Service) DeleteRoadmap(ctx context.Context, accountID, roadmapID uuid.UUID) error {
	if err := s.checkRoadmapOwnership(ctx, accountID, roadmapID); err != nil {
		return err
	}
	return s.repo.DeleteRoadmap(ctx, roadmapID)
}

// MarkComplete records completion of one roadmap point. Calling it twice for
// the same point updates the single existing row; the later completedAt wins.
func (s *Service) MarkComplete(ctx context.Context, accountID, roadmapID uuid.UUID, pointID string, completedAt time.Time) (*models.Progress, error) {
	return s.writeProgress(ctx, accountID, roadmapID, pointID, true, &completedAt)
}

// MarkIncomplete clears the flag but keeps the row: the point stays tracked.
func (s *Service) MarkIncomplete(ctx context.Context, accountID, roadmapID uuid.UUID, pointID string) (*models.Progress, error) {
	return s.writeProgress(ctx, accountID, roadmapID, pointID, false, nil)
}

func (s *Service) writeProgress(ctx context.Context, accountID, roadmapID uuid.UUID, pointID string, completed bool, completedAt *time.Time) (*models.Progress, error) {
	if pointID == "" {
		return nil, fmt.Errorf("point id is required: %w", models.ErrInvalidArgument)
	}

	if err := s.checkRoadmapOwnership(ctx, accountID, roadmapID); err != nil {
		return nil, err
	}

	entry := &models.Progress{
		ID:          uuid.New(),
		AccountID:   accountID,
		RoadmapID:   roadmapID,
		PointID:     pointID,
		IsCompleted: completed,
		CompletedAt: completedAt,
		CreatedAt:   utils.NowUTC(),
	}

	return s.repo.UpsertProgress(ctx, entry)
}

func (s *Service) ListProgress(ctx context.Context, accountID, roadmapID uuid.UUID) ([]*models.Progress, error) {
	if err := s.checkRoadmapOwnership(ctx, accountID, roadmapID); err != nil {
		return nil, err
	}
	return s.repo.ListProgress(ctx, accountID, roadmapID)
}
