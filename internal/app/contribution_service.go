package app

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/wishwell/api/internal/clock"
	"github.com/wishwell/api/internal/domain"
)

// ContributionRepository is the storage surface for the contribution track.
type ContributionRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	ItemForUpdate(ctx context.Context, slug, itemID string) (domain.Item, error)
	ItemReserved(ctx context.Context, itemID string) (bool, error)
	SumContributions(ctx context.Context, itemID string) (int64, error)
	CreateContribution(ctx context.Context, c domain.Contribution) error
	ContributionBySecret(ctx context.Context, contributorSecret string) (domain.ContributionView, error)
	DeleteContribution(ctx context.Context, id string) error
}

// ContributionService implements the accumulative contribution track. The
// budget check and insert run under a row lock on the item, so concurrent
// contributors racing for the last remaining amount are re-evaluated against
// the committed total.
type ContributionService struct {
	repo      ContributionRepository
	newSecret SecretMinter
	clock     clock.Clock
	pub       Publisher
	retryable func(error) bool
}

func NewContributionService(repo ContributionRepository, newSecret SecretMinter, clk clock.Clock, pub Publisher, opts ...ContributionServiceOption) *ContributionService {
	svc := &ContributionService{
		repo:      repo,
		newSecret: newSecret,
		clock:     clk,
		pub:       pub,
		retryable: func(error) bool { return false },
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type ContributionServiceOption func(*ContributionService)

// WithContributionRetry retries the atomic contribute once when the
// predicate reports a transient storage failure.
func WithContributionRetry(retryable func(error) bool) ContributionServiceOption {
	return func(s *ContributionService) {
		if retryable != nil {
			s.retryable = retryable
		}
	}
}

type ContributeInput struct {
	Slug            string
	ItemID          string
	ContributorName string
	Amount          int64
}

// ContributeResult carries the contributor secret, returned exactly once to
// the caller who minted it.
type ContributeResult struct {
	ContributionID    string
	ContributorSecret string
}

func (s *ContributionService) Contribute(ctx context.Context, in ContributeInput) (ContributeResult, error) {
	name := strings.TrimSpace(in.ContributorName)
	if name == "" {
		return ContributeResult{}, domain.ErrNameRequired
	}
	if in.Amount <= 0 {
		return ContributeResult{}, domain.ErrInvalidAmount
	}

	secret, err := s.newSecret()
	if err != nil {
		return ContributeResult{}, err
	}
	c := domain.Contribution{
		ID:                uuid.NewString(),
		ContributorName:   name,
		Amount:            in.Amount,
		ContributorSecret: secret,
		CreatedAt:         s.clock.Now(),
	}

	contribute := func() error {
		return s.repo.WithTx(ctx, func(txCtx context.Context) error {
			item, err := s.repo.ItemForUpdate(txCtx, in.Slug, in.ItemID)
			if err != nil {
				return err
			}
			reserved, err := s.repo.ItemReserved(txCtx, item.ID)
			if err != nil {
				return err
			}
			if reserved {
				return domain.ErrItemReserved
			}
			if item.Price == nil {
				return domain.ErrItemNotPriced
			}
			if item.MinContribution != nil && in.Amount < *item.MinContribution {
				return domain.ErrBelowMinimum
			}
			total, err := s.repo.SumContributions(txCtx, item.ID)
			if err != nil {
				return err
			}
			if total+in.Amount > *item.Price {
				return domain.ErrExceedsRemaining
			}
			c.ItemID = item.ID
			return s.repo.CreateContribution(txCtx, c)
		})
	}
	if err := contribute(); err != nil {
		if !s.retryable(err) {
			return ContributeResult{}, err
		}
		if err := contribute(); err != nil {
			return ContributeResult{}, err
		}
	}

	s.pub.PublishSnapshot(in.Slug)
	return ContributeResult{ContributionID: c.ID, ContributorSecret: secret}, nil
}

func (s *ContributionService) Get(ctx context.Context, contributorSecret string) (domain.ContributionView, error) {
	return s.repo.ContributionBySecret(ctx, contributorSecret)
}

// Cancel deletes the contribution named by the secret, reducing the item's
// collected total.
func (s *ContributionService) Cancel(ctx context.Context, contributorSecret string) error {
	view, err := s.repo.ContributionBySecret(ctx, contributorSecret)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteContribution(ctx, view.ID); err != nil {
		return err
	}
	s.pub.PublishSnapshot(view.WishlistSlug)
	return nil
}
