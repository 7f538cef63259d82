package topic

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/neolearn/neolearn/core"
)

var (
	ErrNotFound    = errors.New("topic not found")
	ErrTitleExists = errors.New("a topic with this title already exists")
)

type (
	Repository interface {
		CheckTitleUniqueness(ctx context.Context, title string) error
		CreateTopic(ctx context.Context, t Topic) (Topic, error)
		QueryAllTopics(ctx context.Context) ([]Topic, error)
		GetTopicByTitle(ctx context.Context, title string) (Topic, error)
		// DeleteTopicByTitle is a no-op for an unknown title.
		DeleteTopicByTitle(ctx context.Context, title string) error
	}

	ServiceInterface interface {
		CheckUniqueness(title string) error
		Add(ctx context.Context, nt NewTopic) (Topic, error)
		List(ctx context.Context) ([]Topic, error)
		GetByTitle(ctx context.Context, title string) (Topic, error)
		Delete(ctx context.Context, title string) error
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CheckUniqueness(title string) error {
	if err := svc.repo.CheckTitleUniqueness(context.Background(), title); err != nil {
		if err == ErrTitleExists {
			return core.NewValidationError(err, core.FieldError{Field: "title", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Add(ctx context.Context, nt NewTopic) (Topic, error) {
	return svc.repo.CreateTopic(ctx, Topic{Title: nt.Title, Prompt: nt.Prompt})
}

// List returns the whole catalog sorted by title.
func (svc *Service) List(ctx context.Context) ([]Topic, error) {
	topics, err := svc.repo.QueryAllTopics(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].Title < topics[j].Title })
	return topics, nil
}

func (svc *Service) GetByTitle(ctx context.Context, title string) (Topic, error) {
	return svc.repo.GetTopicByTitle(ctx, core.CleanString(title))
}

// Delete removes a topic from the catalog; deleting an unknown title is not
// an error.
func (svc *Service) Delete(ctx context.Context, title string) error {
	return svc.repo.DeleteTopicByTitle(ctx, core.CleanString(title))
}
