package models

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

type Repository interface {
	CreateAccount(ctx context.Context, account *Account) error
	GetAccount(ctx context.Context, id uuid.UUID) (*Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*Account, error)
	DeleteAccount(ctx context.Context, id uuid.UUID) error

	CreateTopic(ctx context.Context, topic *Topic) error
	GetTopic(ctx context.Context, id uuid.UUID) (*Topic, error)
	ListTopics(ctx context.Context, accountID uuid.UUID) ([]*Topic, error)
	DeleteTopic(ctx context.Context, id uuid.UUID) error

	CreateRoadmap(ctx context.Context, roadmap *Roadmap) error
	UpdateRoadmapData(ctx context.Context, id uuid.UUID, data json.RawMessage) (*Roadmap, error)
	GetRoadmap(ctx context.Context, id uuid.UUID) (*Roadmap, error)
	GetLatestRoadmapByTopic(ctx context.Context, topicID uuid.UUID) (*Roadmap, error)
	ListRoadmapsByTopic(ctx context.Context, topicID uuid.UUID) ([]*Roadmap, error)
	GetRoadmapOwner(ctx context.Context, roadmapID uuid.UUID) (uuid.UUID, error)
	DeleteRoadmap(ctx context.Context, id uuid.UUID) error

	UpsertProgress(ctx context.Context, entry *Progress) (*Progress, error)
	ListProgress(ctx context.Context, accountID, roadmapID uuid.UUID) ([]*Progress, error)

	UpsertVideoPage(ctx context.Context, page *VideoPage) (*VideoPage, error)
	ListVideoPages(ctx context.Context, roadmapID uuid.UUID, level string, generation int) ([]*VideoPage, error)
	LatestGeneration(ctx context.Context, roadmapID uuid.UUID, level string) (int, error)
	MaxPageNumber(ctx context.Context, roadmapID uuid.UUID, level string, generation int) (int, error)
	DeleteGeneration(ctx context.Context, roadmapID uuid.UUID, level string, generation int) (int64, error)

	GetSettings(ctx context.Context, accountID uuid.UUID) (*Settings, error)
	UpsertSettings(ctx context.Context, settings *Settings) (*Settings, error)

	RunInTx(ctx context.Context, fn func(Repository) error) error
}
