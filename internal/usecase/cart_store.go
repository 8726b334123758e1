package usecase

import (
	"context"
	"errors"
	"sync"

	"storefront/internal/domain/model"
	"storefront/internal/infra/metrics"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const DefaultCartStorageKey = "spinardi-cart"

// ストレージから一度も読めていないので書き込めない
var ErrCartNotLoaded = errors.New("cart not loaded from storage")

// CartListener receives the new cart after a mutation has been applied and
// persisted. Listeners may read the store but must not mutate it.
type CartListener func(model.Cart)

type listenerEntry struct {
	id uint64
	fn CartListener
}

// CartStore owns the cart of one storefront instance.
//
// Mutations run one at a time: build the next immutable Cart, write it to
// storage, publish it, then notify listeners. A failed write is logged and
// the in-memory cart stays authoritative.
type CartStore struct {
	storage repo.Storage
	key     string
	logger  *zap.Logger
	metrics *metrics.Metrics

	writeMu sync.Mutex // 書き込みは1つずつ

	// 起動時の読み込みに失敗した間は true。保存済みのカートを上書きしないよう
	// 書き込みを止め、変更は pending に積んで読めた時点で適用し直す。
	// どちらも writeMu で守る。
	unloaded bool
	pending  []func(model.Cart) model.Cart

	mu        sync.RWMutex // cart と listeners
	cart      model.Cart
	listeners []listenerEntry
	nextID    uint64
}

type CartStoreOption func(*CartStore)

// 保存キーを変える
func WithStorageKey(key string) CartStoreOption {
	return func(s *CartStore) {
		if key != "" {
			s.key = key
		}
	}
}

func WithCartMetrics(m *metrics.Metrics) CartStoreOption {
	return func(s *CartStore) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewCartStore はストレージから復元したカートで初期化する。
// 保存データが無い/壊れている場合は空のカートで始める（壊れたデータは削除）。
// 読み込み自体に失敗した場合も空で始めるが、読めるまで保存はしない。
func NewCartStore(ctx context.Context, storage repo.Storage, logger *zap.Logger, opts ...CartStoreOption) *CartStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &CartStore{
		storage: storage,
		key:     DefaultCartStorageKey,
		logger:  logger,
		metrics: metrics.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("cart_key", s.key))

	cart, ok := s.load(ctx)
	s.cart = cart
	s.unloaded = !ok
	s.observe(s.cart)
	s.logger.Info("cart loaded", zap.Int("lines", s.cart.Len()), zap.Int("items", s.cart.ItemCount()))
	return s
}

// ok=false は読み込みエラー（保存済みデータの有無が分からない）
func (s *CartStore) load(ctx context.Context) (model.Cart, bool) {
	data, err := s.storage.Get(ctx, s.key)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Cart{}, true
	}
	if err != nil {
		s.logger.Warn("cart storage read failed", zap.Error(err))
		return model.Cart{}, false
	}

	cart, err := model.DecodeCart(data)
	if err != nil {
		s.metrics.CartStorageCorruptTotal.Inc()
		s.logger.Warn("discarding corrupt cart payload", zap.Error(err))
		if delErr := s.storage.Delete(ctx, s.key); delErr != nil {
			s.logger.Warn("cart storage delete failed", zap.Error(delErr))
		}
		return model.Cart{}, true
	}
	return cart, true
}

// 未読み込みなら読み直し、保留中の変更を保存済みカートに適用する。
// 呼び出し側が writeMu を持っていること。
func (s *CartStore) ensureLoaded(ctx context.Context) (ok, recovered bool) {
	if !s.unloaded {
		return true, false
	}
	stored, ok := s.load(ctx)
	if !ok {
		return false, false
	}
	for _, fn := range s.pending {
		stored = fn(stored)
	}
	s.logger.Info("cart storage recovered", zap.Int("replayed", len(s.pending)), zap.Int("items", stored.ItemCount()))
	s.pending = nil
	s.unloaded = false

	s.mu.Lock()
	s.cart = stored
	s.mu.Unlock()
	return true, true
}

// 同一商品は数量+1、無ければ数量1で追加（価格などは今の値でスナップショット）
func (s *CartStore) AddItem(ctx context.Context, p model.Product) model.Cart {
	return s.mutate(ctx, "add_item", func(c model.Cart) model.Cart {
		return c.WithProduct(p)
	}, zap.Int64("product_id", p.ID))
}

// n < 1 は RemoveItem と同じ。カートに無い商品は追加しない。
func (s *CartStore) SetQuantity(ctx context.Context, productID int64, n int) model.Cart {
	return s.mutate(ctx, "set_quantity", func(c model.Cart) model.Cart {
		return c.WithQuantity(productID, n)
	}, zap.Int64("product_id", productID), zap.Int("quantity", n))
}

// 無ければ何もしない
func (s *CartStore) RemoveItem(ctx context.Context, productID int64) model.Cart {
	return s.mutate(ctx, "remove_item", func(c model.Cart) model.Cart {
		return c.Without(productID)
	}, zap.Int64("product_id", productID))
}

func (s *CartStore) Clear(ctx context.Context) model.Cart {
	return s.mutate(ctx, "clear", func(model.Cart) model.Cart {
		return model.Cart{}
	})
}

func (s *CartStore) mutate(ctx context.Context, op string, fn func(model.Cart) model.Cart, fields ...zap.Field) model.Cart {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	loaded, _ := s.ensureLoaded(ctx)
	next := fn(s.Cart())
	if loaded {
		s.persist(ctx, next)
	} else {
		s.pending = append(s.pending, fn)
		s.metrics.CartPersistFailures.Inc()
		s.logger.Warn("cart storage unavailable, change kept in memory", zap.Int("pending", len(s.pending)))
	}

	s.mu.Lock()
	s.cart = next
	s.mu.Unlock()

	s.metrics.CartMutationsTotal.WithLabelValues(op).Inc()
	s.observe(next)
	s.logger.Debug("cart "+op, append(fields, zap.Int("items", next.ItemCount()))...)

	s.notify(next)
	return next
}

// 登録順に同期で呼ぶ
func (s *CartStore) notify(c model.Cart) {
	s.mu.RLock()
	listeners := append([]listenerEntry(nil), s.listeners...)
	s.mu.RUnlock()

	for _, l := range listeners {
		l.fn(c)
	}
}

// 書き込み失敗はログだけ（呼び出し側には返さない）
func (s *CartStore) persist(ctx context.Context, c model.Cart) {
	if err := s.write(ctx, c); err != nil {
		s.metrics.CartPersistFailures.Inc()
		s.logger.Warn("cart persist failed", zap.Error(err))
	}
}

func (s *CartStore) write(ctx context.Context, c model.Cart) error {
	data, err := model.EncodeCart(c)
	if err != nil {
		return err
	}
	return s.storage.Set(ctx, s.key, data)
}

// Flush writes the current cart once more. Call it on shutdown.
// It returns ErrCartNotLoaded without writing while storage has never been
// read successfully, so an outage at startup cannot wipe the stored cart.
func (s *CartStore) Flush(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	ok, recovered := s.ensureLoaded(ctx)
	if !ok {
		s.logger.Warn("cart flush skipped", zap.Error(ErrCartNotLoaded), zap.Int("pending", len(s.pending)))
		return ErrCartNotLoaded
	}

	cur := s.Cart()
	if recovered {
		s.observe(cur)
		s.notify(cur)
	}
	if err := s.write(ctx, cur); err != nil {
		s.logger.Warn("cart flush failed", zap.Error(err))
		return err
	}
	return nil
}

// Subscribe registers fn and returns a function that removes it.
func (s *CartStore) Subscribe(fn CartListener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, l := range s.listeners {
				if l.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// 現在のカート（不変値）
func (s *CartStore) Cart() model.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart
}

func (s *CartStore) Items() []model.CartLineItem {
	return s.Cart().Lines()
}

func (s *CartStore) ItemCount() int {
	return s.Cart().ItemCount()
}

func (s *CartStore) Total() decimal.Decimal {
	return s.Cart().Total()
}

func (s *CartStore) observe(c model.Cart) {
	s.metrics.CartLines.Set(float64(c.Len()))
	s.metrics.CartItems.Set(float64(c.ItemCount()))
}
