package model_test

import (
	"testing"

	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id int64, price string) model.Product {
	return model.Product{
		ID:     id,
		Name:   "Prodotto",
		Brand:  "Bosch",
		Price:  decimal.RequireFromString(price),
		Images: []string{"/img/a.jpg", "/img/b.jpg"},
	}
}

func TestCart_WithProduct_AddsNewLineWithSnapshot(t *testing.T) {
	c := model.Cart{}.WithProduct(product(1, "189.90"))

	require.Equal(t, 1, c.Len())
	line, ok := c.Find(1)
	require.True(t, ok)
	assert.Equal(t, 1, line.Quantity)
	assert.Equal(t, "Prodotto", line.Name)
	assert.Equal(t, "Bosch", line.Brand)
	assert.Equal(t, "/img/a.jpg", line.Image)
	assert.True(t, decimal.RequireFromString("189.90").Equal(line.Price))
}

func TestCart_WithProduct_SameProductIncrementsQuantity(t *testing.T) {
	c := model.Cart{}.
		WithProduct(product(1, "10")).
		WithProduct(product(2, "5")).
		WithProduct(product(1, "10"))

	require.Equal(t, 2, c.Len())
	lines := c.Lines()
	assert.Equal(t, int64(1), lines[0].ProductID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, int64(2), lines[1].ProductID)
	assert.Equal(t, 3, c.ItemCount())
	assert.True(t, decimal.RequireFromString("25").Equal(c.Total()))
}

func TestCart_WithProduct_KeepsPriceFromFirstAdd(t *testing.T) {
	c := model.Cart{}.WithProduct(product(1, "10"))
	c = c.WithProduct(product(1, "99"))

	line, _ := c.Find(1)
	assert.Equal(t, 2, line.Quantity)
	assert.True(t, decimal.RequireFromString("10").Equal(line.Price))
}

func TestCart_WithProduct_NoImage(t *testing.T) {
	p := product(1, "10")
	p.Images = nil

	line, _ := model.Cart{}.WithProduct(p).Find(1)
	assert.Equal(t, "", line.Image)
}

func TestCart_IsImmutable(t *testing.T) {
	base := model.Cart{}.WithProduct(product(1, "10"))

	_ = base.WithProduct(product(1, "10"))
	_ = base.WithQuantity(1, 7)
	_ = base.Without(1)
	_ = base.WithProduct(product(2, "3"))

	require.Equal(t, 1, base.Len())
	line, _ := base.Find(1)
	assert.Equal(t, 1, line.Quantity)

	lines := base.Lines()
	lines[0].Quantity = 42
	line, _ = base.Find(1)
	assert.Equal(t, 1, line.Quantity)
}

func TestCart_WithQuantity(t *testing.T) {
	c := model.Cart{}.WithProduct(product(1, "10")).WithProduct(product(2, "4"))

	t.Run("sets quantity", func(t *testing.T) {
		next := c.WithQuantity(2, 5)
		line, _ := next.Find(2)
		assert.Equal(t, 5, line.Quantity)
		assert.True(t, decimal.RequireFromString("30").Equal(next.Total()))
	})

	t.Run("zero removes line", func(t *testing.T) {
		next := c.WithQuantity(1, 0)
		_, ok := next.Find(1)
		assert.False(t, ok)
		assert.Equal(t, 1, next.Len())
	})

	t.Run("negative removes line", func(t *testing.T) {
		next := c.WithQuantity(2, -3)
		_, ok := next.Find(2)
		assert.False(t, ok)
	})

	t.Run("unknown product is a no-op", func(t *testing.T) {
		next := c.WithQuantity(99, 3)
		assert.Equal(t, c.Lines(), next.Lines())
	})
}

func TestCart_Without(t *testing.T) {
	c := model.Cart{}.
		WithProduct(product(1, "1")).
		WithProduct(product(2, "2")).
		WithProduct(product(3, "3"))

	next := c.Without(2)
	lines := next.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, int64(1), lines[0].ProductID)
	assert.Equal(t, int64(3), lines[1].ProductID)

	assert.Equal(t, c.Lines(), c.Without(42).Lines())
}

func TestCart_Empty(t *testing.T) {
	var c model.Cart

	assert.True(t, c.IsEmpty())
	assert.Equal(t, 0, c.ItemCount())
	assert.True(t, c.Total().IsZero())
	assert.NotNil(t, c.Lines())
	assert.Empty(t, c.Lines())
}

func TestNewCart_CopiesInput(t *testing.T) {
	in := []model.CartLineItem{{ProductID: 1, Quantity: 1, Price: decimal.NewFromInt(2)}}
	c := model.NewCart(in...)

	in[0].Quantity = 9
	line, _ := c.Find(1)
	assert.Equal(t, 1, line.Quantity)
}
