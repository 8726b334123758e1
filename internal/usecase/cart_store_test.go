package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/infra/metrics"
	infraRepo "storefront/internal/infra/repository"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, st repo.Storage, opts ...usecase.CartStoreOption) *usecase.CartStore {
	t.Helper()
	return usecase.NewCartStore(context.Background(), st, nil, opts...)
}

func storedCart(t *testing.T, st repo.Storage, key string) model.Cart {
	t.Helper()
	data, err := st.Get(context.Background(), key)
	require.NoError(t, err)
	c, err := model.DecodeCart(data)
	require.NoError(t, err)
	return c
}

// =====================
// 初期化
// =====================

func TestCartStore_StartsEmptyWithoutStoredCart(t *testing.T) {
	s := newStore(t, infraRepo.NewMemoryStorage())

	assert.True(t, s.Cart().IsEmpty())
	assert.Empty(t, s.Items())
	assert.Equal(t, 0, s.ItemCount())
	assert.True(t, s.Total().IsZero())
}

func TestCartStore_RestoresStoredCart(t *testing.T) {
	ctx := context.Background()
	st := infraRepo.NewMemoryStorage()
	p := catalog()

	first := newStore(t, st)
	first.AddItem(ctx, p[0])
	first.AddItem(ctx, p[1])
	first.AddItem(ctx, p[0])

	second := newStore(t, st)
	assert.Equal(t, encoded(t, first.Cart()), encoded(t, second.Cart()))
	assert.Equal(t, 3, second.ItemCount())
}

func TestCartStore_CorruptPayloadIsDiscarded(t *testing.T) {
	ctx := context.Background()
	st := infraRepo.NewMemoryStorage()
	require.NoError(t, st.Set(ctx, usecase.DefaultCartStorageKey, []byte(`{"oops":`)))

	m := metrics.New(prometheus.NewRegistry())
	s := newStore(t, st, usecase.WithCartMetrics(m))

	assert.True(t, s.Cart().IsEmpty())
	_, err := st.Get(ctx, usecase.DefaultCartStorageKey)
	assert.ErrorIs(t, err, repo.ErrNotFound)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CartStorageCorruptTotal))
}

func TestCartStore_ReadErrorKeepsStoredEntry(t *testing.T) {
	st := new(StorageMock)
	st.On("Get", mock.Anything, usecase.DefaultCartStorageKey).Return(nil, errors.New("connection refused"))

	s := newStore(t, st)

	assert.True(t, s.Cart().IsEmpty())
	st.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestCartStore_WithStorageKey(t *testing.T) {
	ctx := context.Background()
	st := infraRepo.NewMemoryStorage()

	s := newStore(t, st, usecase.WithStorageKey("other-cart"))
	s.AddItem(ctx, catalog()[0])

	assert.Equal(t, 1, storedCart(t, st, "other-cart").Len())
	_, err := st.Get(ctx, usecase.DefaultCartStorageKey)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

// =====================
// 変更操作
// =====================

func TestCartStore_AddItem(t *testing.T) {
	ctx := context.Background()
	st := infraRepo.NewMemoryStorage()
	s := newStore(t, st)
	p := catalog()

	s.AddItem(ctx, p[0])
	c := s.AddItem(ctx, p[0])

	require.Equal(t, 1, c.Len())
	line, _ := c.Find(p[0].ID)
	assert.Equal(t, 2, line.Quantity)
	assert.True(t, decimal.RequireFromString("379.80").Equal(s.Total()))
	assert.Equal(t, encoded(t, c), encoded(t, storedCart(t, st, usecase.DefaultCartStorageKey)))
}

func TestCartStore_PriceSnapshotSurvivesCatalogChange(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, infraRepo.NewMemoryStorage())
	p := catalog()[1]

	s.AddItem(ctx, p)
	p.Price = decimal.RequireFromString("99.99")
	s.AddItem(ctx, p)

	line, _ := s.Cart().Find(p.ID)
	assert.True(t, decimal.RequireFromString("24.50").Equal(line.Price))
	assert.True(t, decimal.RequireFromString("49").Equal(s.Total()))
}

func TestCartStore_SetQuantity(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, infraRepo.NewMemoryStorage())
	p := catalog()
	s.AddItem(ctx, p[0])
	s.AddItem(ctx, p[1])

	c := s.SetQuantity(ctx, p[1].ID, 4)
	line, _ := c.Find(p[1].ID)
	assert.Equal(t, 4, line.Quantity)
	assert.Equal(t, 5, s.ItemCount())

	c = s.SetQuantity(ctx, p[1].ID, 0)
	_, ok := c.Find(p[1].ID)
	assert.False(t, ok)

	c = s.SetQuantity(ctx, 999, 3)
	assert.Equal(t, 1, c.Len())
}

func TestCartStore_RemoveItemAndClear(t *testing.T) {
	ctx := context.Background()
	st := infraRepo.NewMemoryStorage()
	s := newStore(t, st)
	p := catalog()
	s.AddItem(ctx, p[0])
	s.AddItem(ctx, p[1])

	c := s.RemoveItem(ctx, p[0].ID)
	assert.Equal(t, []int64{p[1].ID}, lineIDs(c))

	c = s.Clear(ctx)
	assert.True(t, c.IsEmpty())
	assert.True(t, storedCart(t, st, usecase.DefaultCartStorageKey).IsEmpty())
}

func TestCartStore_PersistFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	st := new(StorageMock)
	st.On("Get", mock.Anything, mock.Anything).Return(nil, repo.ErrNotFound)
	st.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("quota exceeded"))

	m := metrics.New(prometheus.NewRegistry())
	s := newStore(t, st, usecase.WithCartMetrics(m))

	notified := 0
	s.Subscribe(func(model.Cart) { notified++ })

	c := s.AddItem(ctx, catalog()[0])

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 1, s.ItemCount())
	assert.Equal(t, 1, notified)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CartPersistFailures))

	err := s.Flush(ctx)
	assert.Error(t, err)
}

func TestCartStore_MutationMetrics(t *testing.T) {
	ctx := context.Background()
	m := metrics.New(prometheus.NewRegistry())
	s := newStore(t, infraRepo.NewMemoryStorage(), usecase.WithCartMetrics(m))
	p := catalog()

	s.AddItem(ctx, p[0])
	s.AddItem(ctx, p[0])
	s.SetQuantity(ctx, p[0].ID, 5)
	s.Clear(ctx)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.CartMutationsTotal.WithLabelValues("add_item")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CartMutationsTotal.WithLabelValues("set_quantity")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CartMutationsTotal.WithLabelValues("clear")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.CartItems))
}

func TestCartStore_ConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	st := infraRepo.NewMemoryStorage()
	s := newStore(t, st)
	p := catalog()[0]

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddItem(ctx, p)
		}()
	}
	wg.Wait()

	line, ok := s.Cart().Find(p.ID)
	require.True(t, ok)
	assert.Equal(t, n, line.Quantity)
	assert.Equal(t, n, storedCart(t, st, usecase.DefaultCartStorageKey).ItemCount())
}

// =====================
// 通知
// =====================

func TestCartStore_ListenersRunInOrderAfterPersist(t *testing.T) {
	ctx := context.Background()
	st := infraRepo.NewMemoryStorage()
	s := newStore(t, st)

	var calls []string
	s.Subscribe(func(c model.Cart) {
		calls = append(calls, "a")
		assert.Equal(t, encoded(t, c), encoded(t, storedCart(t, st, usecase.DefaultCartStorageKey)))
		assert.Equal(t, c.Lines(), s.Items())
	})
	s.Subscribe(func(model.Cart) { calls = append(calls, "b") })

	s.AddItem(ctx, catalog()[0])
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestCartStore_Unsubscribe(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, infraRepo.NewMemoryStorage())

	var calls []string
	unsubA := s.Subscribe(func(model.Cart) { calls = append(calls, "a") })
	s.Subscribe(func(model.Cart) { calls = append(calls, "b") })

	unsubA()
	unsubA()
	s.AddItem(ctx, catalog()[0])

	assert.Equal(t, []string{"b"}, calls)
}

func TestCartStore_NoOpMutationStillNotifies(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, infraRepo.NewMemoryStorage())

	notified := 0
	s.Subscribe(func(model.Cart) { notified++ })

	s.RemoveItem(ctx, 42)
	s.SetQuantity(ctx, 42, 3)

	assert.Equal(t, 2, notified)
	assert.True(t, s.Cart().IsEmpty())
}

func TestCartStore_Flush(t *testing.T) {
	ctx := context.Background()
	st := new(StorageMock)
	st.On("Get", mock.Anything, mock.Anything).Return(nil, repo.ErrNotFound)
	st.On("Set", mock.Anything, usecase.DefaultCartStorageKey, []byte("[]")).Return(nil).Once()

	s := newStore(t, st)

	require.NoError(t, s.Flush(ctx))
	st.AssertExpectations(t)
}

// decimal は内部表現が違っても同じ値なので、保存形式で比べる
func encoded(t *testing.T, c model.Cart) string {
	t.Helper()
	data, err := model.EncodeCart(c)
	require.NoError(t, err)
	return string(data)
}

func lineIDs(c model.Cart) []int64 {
	out := make([]int64, 0, c.Len())
	for _, l := range c.Lines() {
		out = append(out, l.ProductID)
	}
	return out
}

func TestCartStore_Scenario(t *testing.T) {
	ctx := context.Background()
	st := infraRepo.NewMemoryStorage()
	s := newStore(t, st)

	a := model.Product{ID: 1, Name: "A", Price: decimal.NewFromInt(10)}
	b := model.Product{ID: 2, Name: "B", Price: decimal.NewFromInt(30)}

	s.AddItem(ctx, a)
	s.AddItem(ctx, a)
	c := s.AddItem(ctx, b)

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, int64(1), lines[0].ProductID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, int64(2), lines[1].ProductID)
	assert.Equal(t, 1, lines[1].Quantity)
	assert.Equal(t, 3, s.ItemCount())
	assert.True(t, decimal.NewFromInt(50).Equal(s.Total()))

	reloaded := newStore(t, st)
	assert.Equal(t, 3, reloaded.ItemCount())
	assert.True(t, decimal.NewFromInt(50).Equal(reloaded.Total()))
}

func TestCartStore_SetQuantityZeroEqualsRemove(t *testing.T) {
	ctx := context.Background()
	p := catalog()

	for _, id := range []int64{p[0].ID, p[1].ID, 999} {
		viaSet := newStore(t, infraRepo.NewMemoryStorage())
		viaRemove := newStore(t, infraRepo.NewMemoryStorage())
		for _, s := range []*usecase.CartStore{viaSet, viaRemove} {
			s.AddItem(ctx, p[0])
			s.AddItem(ctx, p[1])
		}

		assert.Equal(t,
			encoded(t, viaRemove.RemoveItem(ctx, id)),
			encoded(t, viaSet.SetQuantity(ctx, id, 0)),
		)
	}
}

// =====================
// 読み込み障害
// =====================

// down の間は Get が失敗するストレージ
type outageStorage struct {
	*infraRepo.MemoryStorage
	down bool
}

func (s *outageStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if s.down {
		return nil, errors.New("connection refused")
	}
	return s.MemoryStorage.Get(ctx, key)
}

func TestCartStore_ReadOutageThenFlushKeepsStoredCart(t *testing.T) {
	ctx := context.Background()
	st := &outageStorage{MemoryStorage: infraRepo.NewMemoryStorage()}
	p := catalog()

	first := newStore(t, st)
	first.AddItem(ctx, p[0])
	first.AddItem(ctx, p[0])

	st.down = true
	second := newStore(t, st)
	assert.True(t, second.Cart().IsEmpty())

	st.down = false
	require.NoError(t, second.Flush(ctx))
	assert.Equal(t, 2, second.ItemCount())

	third := newStore(t, st)
	assert.Equal(t, 2, third.ItemCount())
}

func TestCartStore_FlushDuringOutageDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	st := &outageStorage{MemoryStorage: infraRepo.NewMemoryStorage()}
	p := catalog()

	newStore(t, st).AddItem(ctx, p[0])

	st.down = true
	second := newStore(t, st)

	err := second.Flush(ctx)
	assert.ErrorIs(t, err, usecase.ErrCartNotLoaded)
	assert.Equal(t, 1, storedCart(t, st.MemoryStorage, usecase.DefaultCartStorageKey).ItemCount())
}

func TestCartStore_ChangesDuringOutageAreReplayed(t *testing.T) {
	ctx := context.Background()
	st := &outageStorage{MemoryStorage: infraRepo.NewMemoryStorage()}
	p := catalog()

	newStore(t, st).AddItem(ctx, p[0])

	st.down = true
	m := metrics.New(prometheus.NewRegistry())
	second := newStore(t, st, usecase.WithCartMetrics(m))

	var seen []int
	second.Subscribe(func(c model.Cart) { seen = append(seen, c.ItemCount()) })

	c := second.AddItem(ctx, p[1])
	assert.Equal(t, 1, c.ItemCount())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CartPersistFailures))
	// 保存済みのカートはそのまま
	assert.Equal(t, []int64{p[0].ID}, lineIDs(storedCart(t, st.MemoryStorage, usecase.DefaultCartStorageKey)))

	st.down = false
	c = second.AddItem(ctx, p[1])

	assert.Equal(t, []int64{p[0].ID, p[1].ID}, lineIDs(c))
	line, _ := c.Find(p[1].ID)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, []int{1, 3}, seen)

	third := newStore(t, st)
	assert.Equal(t, encoded(t, c), encoded(t, third.Cart()))
}
