package sqliterepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/neolearn/neolearn/core/progress"
)

type ProgressRepository struct {
	db *sqlx.DB
}

var _ progress.Repository = (*ProgressRepository)(nil)

func NewProgressRepository(db *sqlx.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// CreateRecord appends; the table has no uniqueness constraint and accepts
// duplicates.
func (repo *ProgressRepository) CreateRecord(ctx context.Context, rec progress.Record) error {
	_, err := repo.db.ExecContext(ctx,
		"INSERT INTO progress (user_id, topic, passed) VALUES (?, ?, ?)",
		rec.UserID, rec.Topic, rec.Passed,
	)
	return errors.Wrap(err, "creating progress record")
}

func (repo *ProgressRepository) HasRecord(ctx context.Context, userID, topic string) (bool, error) {
	var exists bool
	err := repo.db.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM progress WHERE user_id = ? AND topic = ?)", userID, topic)
	if err != nil {
		return false, errors.Wrap(err, "checking progress record")
	}
	return exists, nil
}
