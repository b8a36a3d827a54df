package item

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"geostrat/app/observability/metrics"
	"geostrat/internal/api"
	"geostrat/internal/api/user"
)

var _ Service = (*ServiceImpl)(nil)

// Service orchestrates validation and persistence for strategic items.
type Service interface {
	Create(ctx context.Context, p Payload) (*Item, error)
	List(ctx context.Context, createdBy string) ([]Item, error)
	Get(ctx context.Context, id uuid.UUID) (*Item, error)
	Update(ctx context.Context, id uuid.UUID, p Payload) (*Item, error)
	Delete(ctx context.Context, id uuid.UUID) (*Item, error)
	ListCreators(ctx context.Context) ([]string, error)
}

type ServiceImpl struct {
	logger  *slog.Logger
	repo    Repository
	users   user.Repository
	mode    CreatorMode
	metrics *metrics.AppMetrics
}

// NewService wires the item service. users may be nil unless mode is
// CreatorModeUser. m may be nil in tests.
func NewService(repo Repository, users user.Repository, mode CreatorMode, m *metrics.AppMetrics, logger *slog.Logger) *ServiceImpl {
	if mode == "" {
		mode = CreatorModeName
	}
	return &ServiceImpl{
		logger:  logger,
		repo:    repo,
		users:   users,
		mode:    mode,
		metrics: m,
	}
}

func (s *ServiceImpl) Create(ctx context.Context, p Payload) (*Item, error) {
	p, verr := ValidatePayload(p, s.mode)
	if verr != nil {
		return nil, verr
	}
	if err := s.resolveCreator(ctx, p.CreatedBy); err != nil {
		return nil, err
	}

	var it *Item
	err := s.timed(ctx, "item.create", func() error {
		var err error
		it, err = s.repo.Create(ctx, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Item created",
		slog.String("id", it.ID.String()),
		slog.String("created_by", it.CreatedBy),
	)
	return it, nil
}

func (s *ServiceImpl) List(ctx context.Context, createdBy string) ([]Item, error) {
	var items []Item
	err := s.timed(ctx, "item.list", func() error {
		var err error
		items, err = s.repo.List(ctx, createdBy)
		return err
	})
	if err != nil {
		return nil, err
	}
	// No matches is a valid, empty result — never an error.
	return items, nil
}

func (s *ServiceImpl) Get(ctx context.Context, id uuid.UUID) (*Item, error) {
	var it *Item
	err := s.timed(ctx, "item.get", func() error {
		var err error
		it, err = s.repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return it, nil
}

func (s *ServiceImpl) Update(ctx context.Context, id uuid.UUID, p Payload) (*Item, error) {
	p, verr := ValidatePayload(p, s.mode)
	if verr != nil {
		return nil, verr
	}
	if err := s.resolveCreator(ctx, p.CreatedBy); err != nil {
		return nil, err
	}

	var it *Item
	err := s.timed(ctx, "item.update", func() error {
		var err error
		it, err = s.repo.Update(ctx, id, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Item updated", slog.String("id", it.ID.String()))
	return it, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id uuid.UUID) (*Item, error) {
	var it *Item
	err := s.timed(ctx, "item.delete", func() error {
		var err error
		it, err = s.repo.Delete(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Item deleted", slog.String("id", it.ID.String()))
	return it, nil
}

func (s *ServiceImpl) ListCreators(ctx context.Context) ([]string, error) {
	var creators []string
	err := s.timed(ctx, "item.list_creators", func() error {
		var err error
		creators, err = s.repo.ListCreators(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return creators, nil
}

// resolveCreator enforces the referential creator mode: created_by must name a
// registered user. In free-text mode this is a no-op.
func (s *ServiceImpl) resolveCreator(ctx context.Context, createdBy string) error {
	if s.mode != CreatorModeUser {
		return nil
	}
	if s.users == nil {
		return fmt.Errorf("creator mode %q requires a user repository", s.mode)
	}
	_, err := s.users.GetByUsername(ctx, createdBy)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return &api.ReferentialError{Field: "created_by", Message: "referenced user does not exist"}
		}
		return fmt.Errorf("failed to resolve creator: %w", err)
	}
	return nil
}

func (s *ServiceImpl) timed(ctx context.Context, op string, fn func() error) error {
	start := time.Now()
	err := fn()
	if s.metrics != nil {
		attrs := metric.WithAttributes(attribute.String("op", op))
		s.metrics.DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
		if err != nil && !errors.Is(err, api.ErrNotFound) {
			s.metrics.DbQueryErrorsTotal.Add(ctx, 1, attrs)
		}
	}
	return err
}
