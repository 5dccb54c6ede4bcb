package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/romanzh1/skillpath/internal/models"
)

// fakeRepository is an in-memory models.Repository with the same keying and
// error behavior as the Postgres implementation, for exercising the service
// rules without a database.
type fakeRepository struct {
	mu        sync.Mutex
	seq       int
	accounts  map[uuid.UUID]*models.Account
	topics    map[uuid.UUID]*models.Topic
	roadmaps  map[uuid.UUID]*models.Roadmap
	progress  map[progressKey]*models.Progress
	pages     map[pageKey]*models.VideoPage
	settings  map[uuid.UUID]*models.Settings
	topicSeq  map[uuid.UUID]int
	pageOrder map[pageKey]int
}

type progressKey struct {
	accountID uuid.UUID
	roadmapID uuid.UUID
	pointID   string
}

type pageKey struct {
	roadmapID  uuid.UUID
	level      string
	pageNumber int
	generation int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		accounts:  make(map[uuid.UUID]*models.Account),
		topics:    make(map[uuid.UUID]*models.Topic),
		roadmaps:  make(map[uuid.UUID]*models.Roadmap),
		progress:  make(map[progressKey]*models.Progress),
		pages:     make(map[pageKey]*models.VideoPage),
		settings:  make(map[uuid.UUID]*models.Settings),
		topicSeq:  make(map[uuid.UUID]int),
		pageOrder: make(map[pageKey]int),
	}
}

func (f *fakeRepository) CreateAccount(_ context.Context, account *models.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.accounts {
		if existing.Username == account.Username {
			return fmt.Errorf("create account (username: %s): %w", account.Username, models.ErrConflict)
		}
	}
	copied := *account
	f.accounts[account.ID] = &copied
	return nil
}

func (f *fakeRepository) GetAccount(_ context.Context, id uuid.UUID) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *account
	return &copied, nil
}

func (f *fakeRepository) GetAccountByUsername(_ context.Context, username string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.Username == username {
			copied := *account
			return &copied, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeRepository) DeleteAccount(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.accounts, id)
	for topicID, topic := range f.topics {
		if topic.AccountID == id {
			f.deleteTopicLocked(topicID)
		}
	}
	for key := range f.progress {
		if key.accountID == id {
			delete(f.progress, key)
		}
	}
	delete(f.settings, id)
	return nil
}

func (f *fakeRepository) CreateTopic(_ context.Context, topic *models.Topic) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[topic.AccountID]; !ok {
		return models.ErrNotFound
	}
	copied := *topic
	f.seq++
	f.topicSeq[topic.ID] = f.seq
	f.topics[topic.ID] = &copied
	return nil
}

func (f *fakeRepository) GetTopic(_ context.Context, id uuid.UUID) (*models.Topic, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	topic, ok := f.topics[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *topic
	return &copied, nil
}

func (f *fakeRepository) ListTopics(_ context.Context, accountID uuid.UUID) ([]*models.Topic, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var topics []*models.Topic
	for _, topic := range f.topics {
		if topic.AccountID == accountID {
			copied := *topic
			topics = append(topics, &copied)
		}
	}
	sort.Slice(topics, func(i, j int) bool {
		return f.topicSeq[topics[i].ID] < f.topicSeq[topics[j].ID]
	})
	return topics, nil
}

func (f *fakeRepository) DeleteTopic(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.topics[id]; !ok {
		return models.ErrNotFound
	}
	f.deleteTopicLocked(id)
	return nil
}

func (f *fakeRepository) deleteTopicLocked(id uuid.UUID) {
	delete(f.topics, id)
	for roadmapID, roadmap := range f.roadmaps {
		if roadmap.TopicID == id {
			f.deleteRoadmapLocked(roadmapID)
		}
	}
}

func (f *fakeRepository) CreateRoadmap(_ context.Context, roadmap *models.Roadmap) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.topics[roadmap.TopicID]; !ok {
		return models.ErrNotFound
	}
	copied := *roadmap
	f.seq++
	f.topicSeq[roadmap.ID] = f.seq
	f.roadmaps[roadmap.ID] = &copied
	return nil
}

func (f *fakeRepository) UpdateRoadmapData(_ context.Context, id uuid.UUID, data json.RawMessage) (*models.Roadmap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	roadmap, ok := f.roadmaps[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	roadmap.Data = data
	roadmap.UpdatedAt = roadmap.UpdatedAt.Add(1)
	copied := *roadmap
	return &copied, nil
}

func (f *fakeRepository) GetRoadmap(_ context.Context, id uuid.UUID) (*models.Roadmap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	roadmap, ok := f.roadmaps[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *roadmap
	return &copied, nil
}

func (f *fakeRepository) GetLatestRoadmapByTopic(_ context.Context, topicID uuid.UUID) (*models.Roadmap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *models.Roadmap
	for _, roadmap := range f.roadmaps {
		if roadmap.TopicID != topicID {
			continue
		}
		if latest == nil || f.topicSeq[roadmap.ID] > f.topicSeq[latest.ID] {
			latest = roadmap
		}
	}
	if latest == nil {
		return nil, models.ErrNotFound
	}
	copied := *latest
	return &copied, nil
}

func (f *fakeRepository) ListRoadmapsByTopic(_ context.Context, topicID uuid.UUID) ([]*models.Roadmap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var roadmaps []*models.Roadmap
	for _, roadmap := range f.roadmaps {
		if roadmap.TopicID == topicID {
			copied := *roadmap
			roadmaps = append(roadmaps, &copied)
		}
	}
	sort.Slice(roadmaps, func(i, j int) bool {
		return f.topicSeq[roadmaps[i].ID] < f.topicSeq[roadmaps[j].ID]
	})
	return roadmaps, nil
}

func (f *fakeRepository) GetRoadmapOwner(_ context.Context, roadmapID uuid.UUID) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	roadmap, ok := f.roadmaps[roadmapID]
	if !ok {
		return uuid.Nil, models.ErrNotFound
	}
	topic, ok := f.topics[roadmap.TopicID]
	if !ok {
		return uuid.Nil, models.ErrNotFound
	}
	return topic.AccountID, nil
}

func (f *fakeRepository) DeleteRoadmap(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.roadmaps[id]; !ok {
		return models.ErrNotFound
	}
	f.deleteRoadmapLocked(id)
	return nil
}

func (f *fakeRepository) deleteRoadmapLocked(id uuid.UUID) {
	delete(f.roadmaps, id)
	for key := range f.progress {
		if key.roadmapID == id {
			delete(f.progress, key)
		}
	}
	for key := range f.pages {
		if key.roadmapID == id {
			delete(f.pages, key)
		}
	}
}

func (f *fakeRepository) UpsertProgress(_ context.Context, entry *models.Progress) (*models.Progress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := progressKey{entry.AccountID, entry.RoadmapID, entry.PointID}
	if existing, ok := f.progress[key]; ok {
		existing.IsCompleted = entry.IsCompleted
		existing.CompletedAt = entry.CompletedAt
		existing.UpdatedAt = existing.UpdatedAt.Add(1)
		copied := *existing
		return &copied, nil
	}
	copied := *entry
	copied.UpdatedAt = copied.CreatedAt
	f.progress[key] = &copied
	result := copied
	return &result, nil
}

func (f *fakeRepository) ListProgress(_ context.Context, accountID, roadmapID uuid.UUID) ([]*models.Progress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var entries []*models.Progress
	for key, entry := range f.progress {
		if key.accountID == accountID && key.roadmapID == roadmapID {
			copied := *entry
			entries = append(entries, &copied)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].PointID < entries[j].PointID })
	return entries, nil
}

func (f *fakeRepository) UpsertVideoPage(_ context.Context, page *models.VideoPage) (*models.VideoPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.roadmaps[page.RoadmapID]; !ok {
		return nil, models.ErrNotFound
	}
	key := pageKey{page.RoadmapID, page.Level, page.PageNumber, page.Generation}
	if existing, ok := f.pages[key]; ok {
		existing.VideoData = page.VideoData
		existing.UpdatedAt = existing.UpdatedAt.Add(1)
		copied := *existing
		return &copied, nil
	}
	copied := *page
	copied.UpdatedAt = copied.CreatedAt
	f.pages[key] = &copied
	result := copied
	return &result, nil
}

func (f *fakeRepository) ListVideoPages(_ context.Context, roadmapID uuid.UUID, level string, generation int) ([]*models.VideoPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var pages []*models.VideoPage
	for key, page := range f.pages {
		if key.roadmapID == roadmapID && key.level == level && key.generation == generation {
			copied := *page
			pages = append(pages, &copied)
		}
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].PageNumber < pages[j].PageNumber })
	return pages, nil
}

func (f *fakeRepository) LatestGeneration(_ context.Context, roadmapID uuid.UUID, level string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	latest := 0
	for key := range f.pages {
		if key.roadmapID == roadmapID && key.level == level && key.generation > latest {
			latest = key.generation
		}
	}
	return latest, nil
}

func (f *fakeRepository) MaxPageNumber(_ context.Context, roadmapID uuid.UUID, level string, generation int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	maxPage := 0
	for key := range f.pages {
		if key.roadmapID == roadmapID && key.level == level && key.generation == generation && key.pageNumber > maxPage {
			maxPage = key.pageNumber
		}
	}
	return maxPage, nil
}

func (f *fakeRepository) DeleteGeneration(_ context.Context, roadmapID uuid.UUID, level string, generation int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for key := range f.pages {
		if key.roadmapID == roadmapID && key.level == level && key.generation == generation {
			delete(f.pages, key)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeRepository) GetSettings(_ context.Context, accountID uuid.UUID) (*models.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	settings, ok := f.settings[accountID]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *settings
	return &copied, nil
}

func (f *fakeRepository) UpsertSettings(_ context.Context, settings *models.Settings) (*models.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.settings[settings.AccountID]; ok {
		existing.DisplayName = settings.DisplayName
		existing.Bio = settings.Bio
		existing.Theme = settings.Theme
		existing.RoadmapDepth = settings.RoadmapDepth
		existing.VideoLength = settings.VideoLength
		existing.UpdatedAt = existing.UpdatedAt.Add(1)
		copied := *existing
		return &copied, nil
	}
	copied := *settings
	copied.UpdatedAt = copied.CreatedAt
	f.settings[settings.AccountID] = &copied
	result := copied
	return &result, nil
}

func (f *fakeRepository) RunInTx(ctx context.Context, fn func(models.Repository) error) error {
	return fn(f)
}
