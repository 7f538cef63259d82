package progress

import "context"

type (
	Repository interface {
		CreateRecord(ctx context.Context, rec Record) error
		HasRecord(ctx context.Context, userID, topic string) (bool, error)
	}

	ServiceInterface interface {
		RecordPass(ctx context.Context, userID, topic string) error
		HasPassed(ctx context.Context, userID, topic string) (bool, error)
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RecordPass appends a passed record for (userID, topic). Callers are
// responsible for calling it at most once per completion event; the ledger
// itself accepts duplicates.
func (svc *Service) RecordPass(ctx context.Context, userID, topic string) error {
	return svc.repo.CreateRecord(ctx, Record{UserID: userID, Topic: topic, Passed: true})
}

func (svc *Service) HasPassed(ctx context.Context, userID, topic string) (bool, error) {
	return svc.repo.HasRecord(ctx, userID, topic)
}
