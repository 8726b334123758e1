package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/infra/metrics"
	repo "storefront/internal/repository"

	"go.uber.org/zap"
)

const (
	featuredLimit = 8
	relatedLimit  = 4
)

// 検索ワードが空のときに出す候補
var DefaultSearchSuggestions = []string{
	"trapano",
	"martello",
	"cacciavite",
	"sega",
	"chiave inglese",
	"morsa",
	"livella",
	"metro",
}

// ProductUsecase はカタログ画面（一覧/カテゴリ/詳細/検索）の読み取り。
// 毎回リポジトリから全件を取り直し、絞り込み・並び替えはメモリ上で行う。
type ProductUsecase struct {
	productRepo  repo.ProductRepository
	categoryRepo repo.CategoryRepository
	engine       *CatalogQueryEngine
	matcher      *SearchMatcher
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	categoryRepo repo.CategoryRepository,
	engine *CatalogQueryEngine,
	matcher *SearchMatcher,
	m *metrics.Metrics,
	logger *zap.Logger,
) *ProductUsecase {
	if m == nil {
		m = metrics.NewNop()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductUsecase{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		engine:       engine,
		matcher:      matcher,
		metrics:      m,
		logger:       logger,
	}
}

type ProductListOutput struct {
	Items         []model.Product `json:"items"`
	Total         int             `json:"total"`
	Brands        []string        `json:"brands"`
	ActiveFilters int             `json:"active_filters"`
}

type CategoryProductsOutput struct {
	Category *model.Category `json:"category"`
	ProductListOutput
}

type SearchOutput struct {
	Query       string          `json:"query"`
	Executed    bool            `json:"executed"`
	Items       []model.Product `json:"items"`
	Total       int             `json:"total"`
	Suggestions []string        `json:"suggestions,omitempty"`
}

// 全商品の一覧
func (u *ProductUsecase) ListProducts(ctx context.Context, criteria model.FilterCriteria, sort model.SortKey) (ProductListOutput, error) {
	products, err := u.allProducts(ctx)
	if err != nil {
		return ProductListOutput{}, err
	}
	return u.list(products, criteria, sort), nil
}

// カテゴリ画面。スラッグ "tutti" は全商品。
func (u *ProductUsecase) ListCategoryProducts(ctx context.Context, slug string, criteria model.FilterCriteria, sort model.SortKey) (CategoryProductsOutput, error) {
	var category *model.Category
	if slug != model.CategorySlugAll {
		c, err := u.categoryRepo.GetBySlug(ctx, slug)
		if errors.Is(err, repo.ErrNotFound) {
			return CategoryProductsOutput{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return CategoryProductsOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		category = &c
	}

	products, err := u.allProducts(ctx)
	if err != nil {
		return CategoryProductsOutput{}, err
	}
	if category != nil {
		scoped := make([]model.Product, 0, len(products))
		for _, p := range products {
			if p.Category == category.Name {
				scoped = append(scoped, p)
			}
		}
		products = scoped
	}

	return CategoryProductsOutput{
		Category:          category,
		ProductListOutput: u.list(products, criteria, sort),
	}, nil
}

func (u *ProductUsecase) list(products []model.Product, criteria model.FilterCriteria, sort model.SortKey) ProductListOutput {
	start := time.Now()
	items := u.engine.Query(products, criteria, sort)
	u.metrics.CatalogQueryDuration.WithLabelValues("query").Observe(time.Since(start).Seconds())

	return ProductListOutput{
		Items:         items,
		Total:         len(items),
		Brands:        UniqueBrands(products),
		ActiveFilters: criteria.ActiveCount(),
	}
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.GetByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

// 同じカテゴリの他の商品（最大4件、カタログ順）
func (u *ProductUsecase) RelatedProducts(ctx context.Context, productID int64) ([]model.Product, error) {
	p, err := u.GetProductDetail(ctx, productID)
	if err != nil {
		return nil, err
	}

	products, err := u.allProducts(ctx)
	if err != nil {
		return nil, err
	}

	related := make([]model.Product, 0, relatedLimit)
	for _, other := range products {
		if other.Category != p.Category || other.ID == p.ID {
			continue
		}
		related = append(related, other)
		if len(related) == relatedLimit {
			break
		}
	}
	return related, nil
}

// トップページ用（先頭8件）
func (u *ProductUsecase) FeaturedProducts(ctx context.Context) ([]model.Product, error) {
	products, err := u.allProducts(ctx)
	if err != nil {
		return nil, err
	}
	if len(products) > featuredLimit {
		products = products[:featuredLimit]
	}
	return products, nil
}

func (u *ProductUsecase) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := u.categoryRepo.GetAll(ctx)
	if err != nil {
		u.logger.Error("list categories", zap.Error(err))
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return categories, nil
}

// 検索。空のクエリは実行せず候補を返す。
// sort が relevance 以外なら、ヒットした商品をその順で並べ直す。
func (u *ProductUsecase) SearchProducts(ctx context.Context, query string, sort model.SortKey) (SearchOutput, error) {
	products, err := u.allProducts(ctx)
	if err != nil {
		return SearchOutput{}, err
	}

	start := time.Now()
	items, ok := u.matcher.Search(products, query)
	if !ok {
		return SearchOutput{
			Query:       query,
			Items:       []model.Product{},
			Suggestions: DefaultSearchSuggestions,
		}, nil
	}
	if sort != "" && sort != model.SortRelevance {
		items = u.engine.Sort(items, sort)
	}
	u.metrics.CatalogQueryDuration.WithLabelValues("search").Observe(time.Since(start).Seconds())

	return SearchOutput{
		Query:    query,
		Executed: true,
		Items:    items,
		Total:    len(items),
	}, nil
}

func (u *ProductUsecase) allProducts(ctx context.Context) ([]model.Product, error) {
	products, err := u.productRepo.GetAll(ctx)
	if err != nil {
		u.logger.Error("load catalog", zap.Error(err))
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return products, nil
}

// ブランド一覧（初出順、重複なし）
func UniqueBrands(products []model.Product) []string {
	seen := make(map[string]struct{}, len(products))
	brands := make([]string, 0)
	for _, p := range products {
		if _, ok := seen[p.Brand]; ok {
			continue
		}
		seen[p.Brand] = struct{}{}
		brands = append(brands, p.Brand)
	}
	return brands
}
