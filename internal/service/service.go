package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/romanzh1/skillpath/internal/auth"
	"github.com/romanzh1/skillpath/internal/models"
	"github.com/romanzh1/skillpath/pkg/generator"
	"github.com/romanzh1/skillpath/pkg/utils"
	"go.uber.org/zap"
)

// Generator produces roadmap documents and video playlists. Payloads are
// opaque; they are stored exactly as returned.
type Generator interface {
	GenerateRoadmap(ctx context.Context, topic, depth string) (json.RawMessage, error)
	GenerateVideoPages(ctx context.Context, req generator.PlaylistRequest) ([]json.RawMessage, error)
}

// RoadmapPolicy picks what an upsert does when a topic already has a roadmap:
// replace the current document in place, or insert a new versioned row.
type RoadmapPolicy string

const (
	RoadmapPolicyReplace RoadmapPolicy = "replace"
	RoadmapPolicyVersion RoadmapPolicy = "version"
)

type Config struct {
	RoadmapPolicy RoadmapPolicy
	// PlaylistPageSize is how many videos the generator is asked to put on
	// one page.
	PlaylistPageSize int
}

type Service struct {
	repo      models.Repository
	generator Generator
	tokens    *auth.TokenManager
	cfg       Config
}

func NewService(repo models.Repository, gen Generator, tokens *auth.TokenManager, cfg Config) (*Service, error) {
	if cfg.RoadmapPolicy == "" {
		cfg.RoadmapPolicy = RoadmapPolicyReplace
	}
	if cfg.RoadmapPolicy != RoadmapPolicyReplace && cfg.RoadmapPolicy != RoadmapPolicyVersion {
		return nil, fmt.Errorf("unknown roadmap policy: %s", cfg.RoadmapPolicy)
	}
	if cfg.PlaylistPageSize <= 0 {
		cfg.PlaylistPageSize = 5
	}

	return &Service{
		repo:      repo,
		generator: gen,
		tokens:    tokens,
		cfg:       cfg,
	}, nil
}

func (s *Service) SignUp(ctx context.Context, username, password string) (*models.Account, string, error) {
	if username == "" || password == "" {
		return nil, "", fmt.Errorf("username and password are required: %w", models.ErrInvalidArgument)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("sign up (username: %s): %w", username, err)
	}

	account := &models.Account{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    utils.NowUTC(),
	}

	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return nil, "", fmt.Errorf("sign up (username: %s): %w", username, err)
	}

	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return nil, "", fmt.Errorf("sign up (username: %s): %w", username, err)
	}

	zap.S().Infow("account created", "account_id", account.ID, "username", username)
	return account, token, nil
}

// LogIn deliberately reports the same error for an unknown username and a
// wrong password.
func (s *Service) LogIn(ctx context.Context, username, password string) (*models.Account, string, error) {
	account, err := s.repo.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, "", fmt.Errorf("invalid credentials: %w", models.ErrForbidden)
		}
		return nil, "", fmt.Errorf("log in (username: %s): %w", username, err)
	}

	if !auth.CheckPassword(account.PasswordHash, password) {
		return nil, "", fmt.Errorf("invalid credentials: %w", models.ErrForbidden)
	}

	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return nil, "", fmt.Errorf("log in (username: %s): %w", username, err)
	}

	return account, token, nil
}

// DeleteAccount removes the account and, through storage-level cascades,
// every topic, roadmap, progress entry, video page and settings row it owns.
func (s *Service) DeleteAccount(ctx context.Context, accountID uuid.UUID) error {
	if err := s.repo.DeleteAccount(ctx, accountID); err != nil {
		return err
	}

	zap.S().Infow("account deleted", "account_id", accountID)
	return nil
}

func (s *Service) CreateTopic(ctx context.Context, accountID uuid.UUID, label string) (*models.Topic, error) {
	if label == "" {
		return nil, fmt.Errorf("topic label is required: %w", models.ErrInvalidArgument)
	}

	// No dedup on label: exploring the same subject twice makes two
	// independent topics with their own curricula.
	topic := &models.Topic{
		ID:        uuid.New(),
		AccountID: accountID,
		Label:     label,
		CreatedAt: utils.NowUTC(),
	}

	if err := s.repo.CreateTopic(ctx, topic); err != nil {
		return nil, err
	}

	return topic, nil
}

func (s *Service) ListTopics(ctx context.Context, accountID uuid.UUID) ([]*models.Topic, error) {
	return s.repo.ListTopics(ctx, accountID)
}

func (s *Service) DeleteTopic(ctx context.Context, accountID, topicID uuid.UUID) error {
	if _, err := s.ownedTopic(ctx, accountID, topicID); err != nil {
		return err
	}
	return s.repo.DeleteTopic(ctx, topicID)
}

func (s *Service) GetSettings(ctx context.Context, accountID uuid.UUID) (*models.Settings, error) {
	settings, err := s.repo.GetSettings(ctx, accountID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.DefaultSettings(accountID), nil
		}
		return nil, err
	}
	return settings, nil
}

// SettingsInput is the full settings record as submitted by the account
// owner; it is validated and written as a unit.
type SettingsInput struct {
	DisplayName  string              `json:"display_name"`
	Bio          string              `json:"bio"`
	Theme        models.Theme        `json:"theme"`
	RoadmapDepth models.RoadmapDepth `json:"roadmap_depth"`
	VideoLength  models.VideoLength  `json:"video_length"`
}

func (s *Service) UpdateSettings(ctx context.Context, accountID uuid.UUID, input SettingsInput) (*models.Settings, error) {
	defaults := models.DefaultSettings(accountID)
	if input.Theme == "" {
		input.Theme = defaults.Theme
	}
	if input.RoadmapDepth == "" {
		input.RoadmapDepth = defaults.RoadmapDepth
	}
	if input.VideoLength == "" {
		input.VideoLength = defaults.VideoLength
	}

	if !input.Theme.Valid() {
		return nil, fmt.Errorf("unknown theme %q: %w", input.Theme, models.ErrInvalidArgument)
	}
	if !input.RoadmapDepth.Valid() {
		return nil, fmt.Errorf("unknown roadmap depth %q: %w", input.RoadmapDepth, models.ErrInvalidArgument)
	}
	if !input.VideoLength.Valid() {
		return nil, fmt.Errorf("unknown video length %q: %w", input.VideoLength, models.ErrInvalidArgument)
	}

	settings := &models.Settings{
		ID:           uuid.New(),
		AccountID:    accountID,
		DisplayName:  input.DisplayName,
		Bio:          input.Bio,
		Theme:        input.Theme,
		RoadmapDepth: input.RoadmapDepth,
		VideoLength:  input.VideoLength,
		CreatedAt:    utils.NowUTC(),
	}

	return s.repo.UpsertSettings(ctx, settings)
}

func (s *Service) ownedTopic(ctx context.Context, accountID, topicID uuid.UUID) (*models.Topic, error) {
	topic, err := s.repo.GetTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if topic.AccountID != accountID {
		return nil, fmt.Errorf("topic %s is not owned by account %s: %w", topicID, accountID, models.ErrForbidden)
	}
	return topic, nil
}

// checkRoadmapOwnership backs every progress and playlist operation: touching
// another account's roadmap is forbidden, never silently empty.
func (s *Service) checkRoadmapOwnership(ctx context.Context, accountID, roadmapID uuid.UUID) error {
	owner, err := s.repo.GetRoadmapOwner(ctx, roadmapID)
	if err != nil {
		return err
	}
	if owner != accountID {
		return fmt.Errorf("roadmap %s is not owned by account %s: %w", roadmapID, accountID, models.ErrForbidden)
	}
	return nil
}
