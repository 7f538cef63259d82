package sqliterepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/neolearn/neolearn/core/topic"
)

type TopicRepository struct {
	db *sqlx.DB
}

var _ topic.Repository = (*TopicRepository)(nil)

func NewTopicRepository(db *sqlx.DB) *TopicRepository {
	return &TopicRepository{db: db}
}

func (repo *TopicRepository) CheckTitleUniqueness(ctx context.Context, title string) error {
	var exists bool
	err := repo.db.GetContext(ctx, &exists, "SELECT EXISTS (SELECT 1 FROM topics WHERE title = ?)", title)
	if err != nil {
		return errors.Wrap(err, "checking title")
	}
	if exists {
		return topic.ErrTitleExists
	}
	return nil
}

func (repo *TopicRepository) CreateTopic(ctx context.Context, t topic.Topic) (topic.Topic, error) {
	_, err := repo.db.ExecContext(ctx,
		"INSERT INTO topics (title, prompt) VALUES (?, ?)", t.Title, t.Prompt)
	if err != nil {
		if isUniqueViolation(err) {
			return topic.Topic{}, topic.ErrTitleExists
		}
		return topic.Topic{}, errors.Wrap(err, "creating topic")
	}
	return t, nil
}

func (repo *TopicRepository) QueryAllTopics(ctx context.Context) ([]topic.Topic, error) {
	topics := []topic.Topic{}
	err := repo.db.SelectContext(ctx, &topics, "SELECT title, prompt FROM topics")
	if err != nil {
		return nil, errors.Wrap(err, "querying topics")
	}
	return topics, nil
}

func (repo *TopicRepository) GetTopicByTitle(ctx context.Context, title string) (topic.Topic, error) {
	var t topic.Topic
	err := repo.db.GetContext(ctx, &t, "SELECT title, prompt FROM topics WHERE title = ?", title)
	if err != nil {
		if err == sql.ErrNoRows {
			return topic.Topic{}, topic.ErrNotFound
		}
		return topic.Topic{}, errors.Wrap(err, "finding topic by title")
	}
	return t, nil
}

func (repo *TopicRepository) DeleteTopicByTitle(ctx context.Context, title string) error {
	if _, err := repo.db.ExecContext(ctx, "DELETE FROM topics WHERE title = ?", title); err != nil {
		return errors.Wrap(err, "deleting topic")
	}
	return nil
}
