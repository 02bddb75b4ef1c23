// Package services – CafeService
//
// This file implements CafeService, which owns the rules of the cafe
// directory: location search, uniform random selection, adding cafes with
// presence validation, price updates and key-guarded deletes. Repository
// errors are translated into the sentinels in errors.go so handlers can map
// them to HTTP results consistently.
package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"math/rand/v2"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/tbourn/go-cafe-api/internal/domain"
	"github.com/tbourn/go-cafe-api/internal/observability"
	"github.com/tbourn/go-cafe-api/internal/repo"
)

const tracerName = "services/CafeService"

// randomAttempts bounds how often Random retries when a row vanishes between
// counting and fetching.
const randomAttempts = 3

// CafeRepo defines the repository contract required by CafeService.
type CafeRepo interface {
	// ListCafes returns every cafe ordered by id.
	ListCafes(ctx context.Context, db *gorm.DB) ([]domain.Cafe, error)

	// FindCafesByLocation returns the cafes whose location equals loc.
	FindCafesByLocation(ctx context.Context, db *gorm.DB, loc string) ([]domain.Cafe, error)

	// GetCafe fetches a cafe by id.
	GetCafe(ctx context.Context, db *gorm.DB, id uint) (*domain.Cafe, error)

	// CountCafes returns the number of stored cafes.
	CountCafes(ctx context.Context, db *gorm.DB) (int64, error)

	// CafeAt returns the cafe at the given zero-based position in id order.
	CafeAt(ctx context.Context, db *gorm.DB, offset int) (*domain.Cafe, error)

	// CreateCafe inserts a cafe, failing on a duplicate name.
	CreateCafe(ctx context.Context, db *gorm.DB, in domain.CafeInput) (*domain.Cafe, error)

	// UpdateCoffeePrice sets the coffee price of an existing cafe.
	UpdateCoffeePrice(ctx context.Context, db *gorm.DB, id uint, price string) error

	// DeleteCafe removes a cafe by id.
	DeleteCafe(ctx context.Context, db *gorm.DB, id uint) error
}

// CafeService provides the operations exposed by the HTTP API.
type CafeService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the cafe repository used by this service.
	Repo CafeRepo
	// APIKey is the shared secret required to delete cafes.
	APIKey string
	// Pick returns a uniformly distributed index in [0, n).
	Pick func(n int) int
}

// NewCafeService constructs a CafeService using math/rand/v2 for selection.
func NewCafeService(db *gorm.DB, r CafeRepo, apiKey string) *CafeService {
	return &CafeService{
		DB:     db,
		Repo:   r,
		APIKey: apiKey,
		Pick:   rand.IntN,
	}
}

// All returns every cafe.
func (s *CafeService) All(ctx context.Context) ([]domain.Cafe, error) {
	return s.Repo.ListCafes(ctx, s.DB)
}

// Search returns the cafes whose location equals loc byte for byte, or
// ErrNoCafesAtLocation when none match.
func (s *CafeService) Search(ctx context.Context, loc string) ([]domain.Cafe, error) {
	items, err := s.Repo.FindCafesByLocation(ctx, s.DB, loc)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNoCafesAtLocation
	}
	return items, nil
}

// Random returns one cafe chosen uniformly from the store. An empty store
// yields ErrNoCafes.
func (s *CafeService) Random(ctx context.Context) (_ *domain.Cafe, err error) {
	ctx, span := observability.StartSpan(ctx, tracerName, "CafeService.Random")
	defer func() { observability.End(span, unexpected(err)) }()

	for i := 0; i < randomAttempts; i++ {
		n, err := s.Repo.CountCafes(ctx, s.DB)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, ErrNoCafes
		}
		c, err := s.Repo.CafeAt(ctx, s.DB, s.pick(int(n)))
		if errors.Is(err, repo.ErrNotFound) {
			// Deleted concurrently; count again.
			continue
		}
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, ErrNoCafes
}

// Get returns the cafe with the given id or ErrCafeNotFound.
func (s *CafeService) Get(ctx context.Context, id uint) (*domain.Cafe, error) {
	c, err := s.Repo.GetCafe(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrCafeNotFound
	}
	return c, err
}

// Add normalizes and validates in, then stores a new cafe.
func (s *CafeService) Add(ctx context.Context, in domain.CafeInput) (_ *domain.Cafe, err error) {
	in = in.Normalize()
	ctx, span := observability.StartSpan(ctx, tracerName, "CafeService.Add",
		attribute.String("cafe.location", in.Location))
	defer func() { observability.End(span, unexpected(err)) }()

	if err := in.Validate(); err != nil {
		return nil, ErrMissingFields
	}
	c, err := s.Repo.CreateCafe(ctx, s.DB, in)
	if errors.Is(err, repo.ErrDuplicateName) {
		return nil, ErrDuplicateName
	}
	return c, err
}

// UpdatePrice replaces the coffee price of cafe id.
func (s *CafeService) UpdatePrice(ctx context.Context, id uint, price string) (err error) {
	ctx, span := observability.StartSpan(ctx, tracerName, "CafeService.UpdatePrice",
		attribute.Int64("cafe.id", int64(id)))
	defer func() { observability.End(span, unexpected(err)) }()

	price = domain.NormalizeText(price)
	if price == "" {
		return ErrMissingPrice
	}
	err = s.Repo.UpdateCoffeePrice(ctx, s.DB, id, price)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrCafeNotFound
	}
	return err
}

// Delete removes cafe id after checking apiKey against the configured secret.
// The key is checked first so an unauthorized caller learns nothing about
// which ids exist.
func (s *CafeService) Delete(ctx context.Context, id uint, apiKey string) (err error) {
	ctx, span := observability.StartSpan(ctx, tracerName, "CafeService.Delete",
		attribute.Int64("cafe.id", int64(id)))
	defer func() { observability.End(span, unexpected(err)) }()

	if strings.TrimSpace(apiKey) == "" {
		return ErrMissingAPIKey
	}
	if !s.keyMatches(apiKey) {
		return ErrInvalidAPIKey
	}
	err = s.Repo.DeleteCafe(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrCafeNotFound
	}
	return err
}

// unexpected drops the outcomes callers are told about through sentinels so
// only real failures mark a span as errored.
func unexpected(err error) error {
	for _, known := range []error{
		ErrCafeNotFound, ErrNoCafesAtLocation, ErrNoCafes,
		ErrMissingFields, ErrDuplicateName, ErrMissingPrice,
		ErrMissingAPIKey, ErrInvalidAPIKey,
	} {
		if errors.Is(err, known) {
			return nil
		}
	}
	return err
}

func (s *CafeService) keyMatches(k string) bool {
	if s.APIKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(k), []byte(s.APIKey)) == 1
}

func (s *CafeService) pick(n int) int {
	if s.Pick == nil {
		return rand.IntN(n)
	}
	i := s.Pick(n)
	if i < 0 || i >= n {
		return 0
	}
	return i
}
