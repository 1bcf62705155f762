package app

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/wishwell/api/internal/clock"
	"github.com/wishwell/api/internal/domain"
)

// ReservationRepository is the storage surface for the reservation track.
type ReservationRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	ItemForUpdate(ctx context.Context, slug, itemID string) (domain.Item, error)
	ItemReserved(ctx context.Context, itemID string) (bool, error)
	CreateReservation(ctx context.Context, res domain.Reservation) error
	ReservationBySecret(ctx context.Context, reserverSecret string) (domain.ReservationView, error)
	DeleteReservation(ctx context.Context, id string) error
}

// ReservationService implements the reservation track of the engine:
// Unreserved -> Reserved -> (cancelled) -> Unreserved. The storage layer's
// unique constraint on the item decides concurrent reservers.
type ReservationService struct {
	repo      ReservationRepository
	newSecret SecretMinter
	clock     clock.Clock
	pub       Publisher
	retryable func(error) bool
}

func NewReservationService(repo ReservationRepository, newSecret SecretMinter, clk clock.Clock, pub Publisher, opts ...ReservationServiceOption) *ReservationService {
	svc := &ReservationService{
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

type ReservationServiceOption func(*ReservationService)

// WithReservationRetry retries the atomic reserve once when the predicate
// reports a transient storage failure.
func WithReservationRetry(retryable func(error) bool) ReservationServiceOption {
	return func(s *ReservationService) {
		if retryable != nil {
			s.retryable = retryable
		}
	}
}

type ReserveInput struct {
	Slug         string
	ItemID       string
	ReserverName string
}

// ReserveResult carries the reserver secret, returned exactly once to the
// caller who minted it.
type ReserveResult struct {
	ReservationID  string
	ReserverSecret string
}

func (s *ReservationService) Reserve(ctx context.Context, in ReserveInput) (ReserveResult, error) {
	name := strings.TrimSpace(in.ReserverName)
	if name == "" {
		return ReserveResult{}, domain.ErrNameRequired
	}

	secret, err := s.newSecret()
	if err != nil {
		return ReserveResult{}, err
	}
	res := domain.Reservation{
		ID:             uuid.NewString(),
		ReserverName:   name,
		ReserverSecret: secret,
		CreatedAt:      s.clock.Now(),
	}

	reserve := func() error {
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
				return domain.ErrAlreadyReserved
			}
			res.ItemID = item.ID
			// The unique constraint on item_id backs this check against
			// writers we did not serialize with.
			return s.repo.CreateReservation(txCtx, res)
		})
	}
	if err := reserve(); err != nil {
		if !s.retryable(err) {
			return ReserveResult{}, err
		}
		if err := reserve(); err != nil {
			return ReserveResult{}, err
		}
	}

	s.pub.PublishSnapshot(in.Slug)
	return ReserveResult{ReservationID: res.ID, ReserverSecret: secret}, nil
}

func (s *ReservationService) Get(ctx context.Context, reserverSecret string) (domain.ReservationView, error) {
	return s.repo.ReservationBySecret(ctx, reserverSecret)
}

// Cancel deletes the reservation named by the secret and reverts the item to
// unreserved. A second cancel with the same secret finds nothing.
func (s *ReservationService) Cancel(ctx context.Context, reserverSecret string) error {
	view, err := s.repo.ReservationBySecret(ctx, reserverSecret)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteReservation(ctx, view.ID); err != nil {
		return err
	}
	s.pub.PublishSnapshot(view.WishlistSlug)
	return nil
}
