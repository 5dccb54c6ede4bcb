package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/romanzh1/skillpath/internal/models"
)

func (r *Postgres) CreateTopic(ctx context.Context, topic *models.Topic) error {
	query := r.psql.Insert("topics").
		Columns("id", "account_id", "label", "created_at").
		Values(topic.ID, topic.AccountID, topic.Label, topic.CreatedAt)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build SQL query (account_id: %s, label: %s): %w", topic.AccountID, topic.Label, err)
	}

	if _, err = r.ExecContext(ctx, sql, args...); err != nil {
		return fmt.Errorf("create topic (account_id: %s, label: %s): %w", topic.AccountID, topic.Label, dbError(err))
	}
	return nil
}

func (r *Postgres) GetTopic(ctx context.Context, id uuid.UUID) (*models.Topic, error) {
	query := `
		SELECT id, account_id, label, created_at
		FROM topics WHERE id = $1
	`

	var topic models.Topic
	if err := r.GetContext(ctx, &topic, query, id); err != nil {
		return nil, fmt.Errorf("get topic (id: %s): %w", id, dbError(err))
	}

	return &topic, nil
}

func (r *Postgres) ListTopics(ctx context.Context, accountID uuid.UUID) ([]*models.Topic, error) {
	query := `
		SELECT id, account_id, label, created_at
		FROM topics
		WHERE account_id = $1
		ORDER BY created_at ASC
	`

	var topics []*models.Topic
	if err := r.SelectContext(ctx, &topics, query, accountID); err != nil {
		return nil, fmt.Errorf("list topics (account_id: %s): %w", accountID, dbError(err))
	}

	return topics, nil
}

func (r *Postgres) DeleteTopic(ctx context.Context, id uuid.UUID) error {
	query := r.psql.Delete("topics").Where("id = ?", id)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build SQL query (topic_id: %s): %w", id, err)
	}

	res, err := r.ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete topic (topic_id: %s): %w", id, dbError(err))
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete topic (topic_id: %s): %w", id, models.ErrNotFound)
	}
	return nil
}
