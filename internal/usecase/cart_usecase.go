package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// CartUsecase は /cart の業務ロジックです。
// 状態は CartStore が持ち、ここでは商品の解決とレスポンス組み立てだけ行う。
type CartUsecase struct {
	store       *CartStore
	productRepo repo.ProductRepository
}

func NewCartUsecase(store *CartStore, productRepo repo.ProductRepository) *CartUsecase {
	return &CartUsecase{
		store:       store,
		productRepo: productRepo,
	}
}

// CartResponse は UI に返すカート
type CartResponse struct {
	Items          []model.CartLineItem `json:"items"`
	ItemCount      int                  `json:"item_count"`
	Total          json.Number          `json:"total"`
	TotalFormatted string               `json:"total_formatted"`
}

type AddCartInput struct {
	ProductID int64
}

type UpdateCartItemInput struct {
	Quantity int
}

func (u *CartUsecase) GetCart(ctx context.Context) CartResponse {
	return buildCartResponse(u.store.Cart())
}

// AddToCart はカートに追加（同一商品は数量+1）。
func (u *CartUsecase) AddToCart(ctx context.Context, in AddCartInput) (CartResponse, error) {
	if in.ProductID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	p, err := u.productRepo.GetByID(ctx, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return buildCartResponse(u.store.AddItem(ctx, p)), nil
}

// 数量変更。1未満は削除。
func (u *CartUsecase) UpdateCartItem(ctx context.Context, productID int64, in UpdateCartItemInput) (CartResponse, error) {
	if productID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return buildCartResponse(u.store.SetQuantity(ctx, productID, in.Quantity)), nil
}

// 明細削除
func (u *CartUsecase) DeleteCartItem(ctx context.Context, productID int64) (CartResponse, error) {
	if productID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return buildCartResponse(u.store.RemoveItem(ctx, productID)), nil
}

func (u *CartUsecase) ClearCart(ctx context.Context) CartResponse {
	return buildCartResponse(u.store.Clear(ctx))
}

func buildCartResponse(c model.Cart) CartResponse {
	total := c.Total()
	return CartResponse{
		Items:          c.Lines(),
		ItemCount:      c.ItemCount(),
		Total:          json.Number(total.String()),
		TotalFormatted: model.FormatPrice(total),
	}
}
