package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Account struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type Topic struct {
	ID        uuid.UUID `db:"id" json:"id"`
	AccountID uuid.UUID `db:"account_id" json:"account_id"`
	Label     string    `db:"label" json:"label"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Roadmap holds one generated curriculum document for a topic. The document
// is opaque to the store: whatever JSON the generator produced is kept verbatim.
type Roadmap struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	TopicID   uuid.UUID       `db:"topic_id" json:"topic_id"`
	Data      json.RawMessage `db:"roadmap_data" json:"roadmap_data"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// Progress tracks completion of a single roadmap point for one account.
// At most one row exists per (account, roadmap, point).
type Progress struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	AccountID   uuid.UUID  `db:"account_id" json:"account_id"`
	RoadmapID   uuid.UUID  `db:"roadmap_id" json:"roadmap_id"`
	PointID     string     `db:"point_id" json:"point_id"`
	IsCompleted bool       `db:"is_completed" json:"is_completed"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// VideoPage is one ordered chunk of a level's video playlist. The composite
// key (roadmap, level, page, generation) lets a playlist be regenerated under
// a new generation number without touching earlier generations.
type VideoPage struct {
	RoadmapID  uuid.UUID       `db:"roadmap_id" json:"roadmap_id"`
	Level      string          `db:"level" json:"level"`
	PageNumber int             `db:"page_number" json:"page_number"`
	Generation int             `db:"generation" json:"generation"`
	VideoData  json.RawMessage `db:"video_data" json:"video_data"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

type RoadmapDepth string

const (
	DepthBasic         RoadmapDepth = "basic"
	DepthDetailed      RoadmapDepth = "detailed"
	DepthComprehensive RoadmapDepth = "comprehensive"
)

func (d RoadmapDepth) Valid() bool {
	return d == DepthBasic || d == DepthDetailed || d == DepthComprehensive
}

type VideoLength string

const (
	LengthShort  VideoLength = "short"
	LengthMedium VideoLength = "medium"
	LengthLong   VideoLength = "long"
)

func (l VideoLength) Valid() bool {
	return l == LengthShort || l == LengthMedium || l == LengthLong
}

// Settings is the per-account generation preferences record, one row per
// account. A missing row means system defaults apply.
type Settings struct {
	ID           uuid.UUID    `db:"id" json:"id"`
	AccountID    uuid.UUID    `db:"account_id" json:"account_id"`
	DisplayName  string       `db:"display_name" json:"display_name"`
	Bio          string       `db:"bio" json:"bio"`
	Theme        Theme        `db:"theme" json:"theme"`
	RoadmapDepth RoadmapDepth `db:"roadmap_depth" json:"roadmap_depth"`
	VideoLength  VideoLength  `db:"video_length" json:"video_length"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// DefaultSettings is what an account without a settings row gets.
func DefaultSettings(accountID uuid.UUID) *Settings {
	return &Settings{
		AccountID:    accountID,
		Theme:        ThemeLight,
		RoadmapDepth: DepthDetailed,
		VideoLength:  LengthMedium,
	}
}
