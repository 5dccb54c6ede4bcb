package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/romanzh1/skillpath/internal/models"
)

func (r *Postgres) CreateAccount(ctx context.Context, account *models.Account) error {
	query := r.psql.Insert("accounts").
		Columns("id", "username", "password_hash", "created_at").
		Values(account.ID, account.Username, account.PasswordHash, account.CreatedAt)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build SQL query (username: %s): %w", account.Username, err)
	}

	if _, err = r.ExecContext(ctx, sql, args...); err != nil {
		return fmt.Errorf("create account (username: %s): %w", account.Username, dbError(err))
	}
	return nil
}

func (r *Postgres) GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := `
		SELECT id, username, password_hash, created_at
		FROM accounts WHERE id = $1
	`

	var account models.Account
	if err := r.GetContext(ctx, &account, query, id); err != nil {
		return nil, fmt.Errorf("get account (id: %s): %w", id, dbError(err))
	}

	return &account, nil
}

func (r *Postgres) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := `
		SELECT id, username, password_hash, created_at
		FROM accounts WHERE username = $1
	`

	var account models.Account
	if err := r.GetContext(ctx, &account, query, username); err != nil {
		return nil, fmt.Errorf("get account (username: %s): %w", username, dbError(err))
	}

	return &account, nil
}

// DeleteAccount removes the account; topics, roadmaps, progress, video pages
// and settings go with it through the FK cascade chain.
func (r *Postgres) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	query := r.psql.Delete("accounts").Where("id = ?", id)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build SQL query (account_id: %s): %w", id, err)
	}

	res, err := r.ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete account (account_id: %s): %w", id, dbError(err))
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete account (account_id: %s): %w", id, models.ErrNotFound)
	}
	return nil
}
