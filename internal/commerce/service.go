package commerce

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/haider-deku/3d-marketplace/internal/domain"
	"github.com/haider-deku/3d-marketplace/internal/events"
)

const defaultMaxRetries = 5

// ProductCache is an optional read-through cache for product lookups in the cart view.
type ProductCache interface {
	Get(ctx context.Context, id int64) (*domain.Product, bool, error)
	Set(ctx context.Context, p *domain.Product) error
	Invalidate(ctx context.Context, ids ...int64) error
}

// Service implements the cart engine, checkout pipeline and order lifecycle.
type Service struct {
	db         *gorm.DB
	cache      ProductCache
	maxRetries int
}

type Option func(*Service)

// WithProductCache routes cart view product reads through cache.
//
// Invalidation is best effort: a view that missed the cache may write back a copy read
// just before a concurrent catalog update, and that copy then lives until the cache TTL
// expires. Only the cart view reads the cache; checkout always prices from the database.
func WithProductCache(cache ProductCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

// WithMaxRetries bounds the attempts of a cart read-modify-write on revision conflicts.
func WithMaxRetries(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxRetries = n
		}
	}
}

func NewService(db *gorm.DB, opts ...Option) *Service {
	s := &Service{db: db, maxRetries: defaultMaxRetries}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// repositories bundles the stores bound to one handle, either the root DB or a transaction.
type repositories struct {
	clients  ClientRepository
	products ProductRepository
	carts    CartRepository
	orders   OrderRepository
	outbox   events.OutboxRepository
}

func newRepositories(db *gorm.DB) repositories {
	return repositories{
		clients:  NewGormClientRepository(db),
		products: NewGormProductRepository(db),
		carts:    NewGormCartRepository(db),
		orders:   NewGormOrderRepository(db),
		outbox:   events.NewGormOutboxRepository(db),
	}
}

func (s *Service) repos() repositories {
	return newRepositories(s.db)
}

func (s *Service) transaction(ctx context.Context, fn func(r repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newRepositories(tx))
	})
}

// withRetry reruns fn while it fails with ErrCartConflict.
func (s *Service) withRetry(ctx context.Context, op string, clientID int64, fn func() error) error {
	for attempt := 1; ; attempt++ {
		err := fn()
		if !errors.Is(err, ErrCartConflict) {
			return err
		}
		if attempt >= s.maxRetries {
			zap.L().Warn("cart conflict retries exhausted",
				zap.String("op", op),
				zap.Int64("client_id", clientID),
				zap.Int("attempts", attempt),
			)
			return errCartBusy
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		zap.L().Debug("cart revision conflict, retrying",
			zap.String("op", op),
			zap.Int64("client_id", clientID),
			zap.Int("attempt", attempt),
		)
	}
}

func (s *Service) requireClient(ctx context.Context, r repositories, clientID int64) error {
	ok, err := r.clients.Exists(ctx, clientID)
	if err != nil {
		return errors.Wrap(err, "query client")
	}
	if !ok {
		return errClientNotFound
	}
	return nil
}

func (s *Service) requireCart(ctx context.Context, r repositories, clientID int64) (*domain.Cart, error) {
	cart, err := r.carts.GetByClient(ctx, clientID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errCartNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query cart")
	}
	return cart, nil
}

// cachedProduct resolves a product through the cache when one is configured.
// Cache failures are logged and fall through to the database.
func (s *Service) cachedProduct(ctx context.Context, id int64) (*domain.Product, error) {
	if s.cache != nil {
		p, hit, err := s.cache.Get(ctx, id)
		if err != nil {
			zap.L().Warn("product cache read failed", zap.Int64("product_id", id), zap.Error(err))
		} else if hit {
			return p, nil
		}
	}
	p, err := s.repos().products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, p); err != nil {
			zap.L().Warn("product cache write failed", zap.Int64("product_id", id), zap.Error(err))
		}
	}
	return p, nil
}

// InvalidateProducts drops cached copies after catalog writes.
func (s *Service) InvalidateProducts(ctx context.Context, ids ...int64) {
	if s.cache == nil || len(ids) == 0 {
		return
	}
	if err := s.cache.Invalidate(ctx, ids...); err != nil {
		zap.L().Warn("product cache invalidate failed", zap.Int64s("product_ids", ids), zap.Error(err))
	}
}
