package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/handler"
	"storefront/internal/infra/db"
	"storefront/internal/infra/logger"
	"storefront/internal/infra/metrics"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/infra/seed"
	repo "storefront/internal/repository"
	"storefront/internal/server"
	"storefront/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const redisKeyPrefix = "storefront:"

func main() {
	//.env は無くてもよい
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(logger.Config{
		Env:        cfg.GoEnv,
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSizeMB:  50,
		MaxBackups: 3,
		MaxAgeDays: 14,
	})
	if err != nil {
		panic(err)
	}

	code := 0
	if err := run(cfg, log); err != nil {
		log.Error("server stopped", zap.Error(err))
		code = 1
	}
	_ = log.Sync()
	os.Exit(code)
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//メトリクス
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	//DB接続（postgres を使うときだけ）
	var gormDB *gorm.DB
	if cfg.UsesPostgres() {
		var err error
		gormDB, err = db.Connect(cfg)
		if err != nil {
			return err
		}
		if err := gormDB.WithContext(ctx).AutoMigrate(
			&model.Category{},
			&model.Product{},
			&model.StorageEntry{},
		); err != nil {
			return err
		}
	}

	//カタログ
	productRepo, categoryRepo, err := newCatalog(ctx, cfg, gormDB, log)
	if err != nil {
		return err
	}

	//カートの保存先
	storage, closeStorage, err := newStorage(ctx, cfg, gormDB)
	if err != nil {
		return err
	}
	defer closeStorage()

	store := usecase.NewCartStore(ctx, storage, log,
		usecase.WithStorageKey(cfg.CartStorageKey),
		usecase.WithCartMetrics(m),
	)
	unsubscribe := store.Subscribe(func(c model.Cart) {
		log.Debug("cart changed",
			zap.Int("lines", c.Len()),
			zap.Int("items", c.ItemCount()),
			zap.String("total", c.Total().StringFixed(2)),
		)
	})
	defer unsubscribe()

	//Usecase生成
	locale := cfg.Locale()
	productUC := usecase.NewProductUsecase(
		productRepo,
		categoryRepo,
		usecase.NewCatalogQueryEngine(locale),
		usecase.NewSearchMatcher(locale),
		m,
		log,
	)
	cartUC := usecase.NewCartUsecase(store, productRepo)

	//Handler生成
	e := server.New(cfg, log, m, reg, server.Handlers{
		Product:  handler.NewProductHandler(productUC),
		Category: handler.NewCategoryHandler(productUC),
		Search:   handler.NewSearchHandler(productUC),
		Cart:     handler.NewCartHandler(cartUC),
	})

	//Server起動
	addr := ":" + cfg.Port
	log.Info("listening",
		zap.String("addr", addr),
		zap.String("catalog", cfg.CatalogSource),
		zap.String("cart_storage", cfg.CartStorage),
		zap.String("cart_storage_dir", cfg.CartStorageDir),
	)
	serveErr := server.Start(ctx, e, addr)

	return flushCart(store, serveErr)
}

// 最後の状態を書き出す。失敗はサーバのエラーとまとめて返す
func flushCart(store *usecase.CartStore, serveErr error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Flush(ctx); err != nil {
		return errors.Join(serveErr, fmt.Errorf("flush cart: %w", err))
	}
	return serveErr
}

func newCatalog(ctx context.Context, cfg config.Config, gormDB *gorm.DB, log *zap.Logger) (repo.ProductRepository, repo.CategoryRepository, error) {
	products, err := seed.Products()
	if err != nil {
		return nil, nil, err
	}
	categories, err := seed.Categories()
	if err != nil {
		return nil, nil, err
	}

	if cfg.CatalogSource != config.SourcePostgres {
		return infraRepo.NewProductMemoryRepository(products, cfg.CatalogMockLatency),
			infraRepo.NewCategoryMemoryRepository(categories, cfg.CatalogMockLatency),
			nil
	}

	productRepo := infraRepo.NewProductGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)

	n, err := categoryRepo.SeedIfEmpty(ctx, categories)
	if err != nil {
		return nil, nil, err
	}
	if n > 0 {
		log.Info("seeded categories", zap.Int("count", n))
	}
	n, err = productRepo.SeedIfEmpty(ctx, products)
	if err != nil {
		return nil, nil, err
	}
	if n > 0 {
		log.Info("seeded products", zap.Int("count", n))
	}

	return productRepo, categoryRepo, nil
}

func newStorage(ctx context.Context, cfg config.Config, gormDB *gorm.DB) (repo.Storage, func(), error) {
	switch cfg.CartStorage {
	case config.SourcePostgres:
		return infraRepo.NewStorageGormRepository(gormDB), func() {}, nil
	case config.SourceRedis:
		client, err := db.ConnectRedis(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return infraRepo.NewRedisStorage(client, redisKeyPrefix), func() { _ = client.Close() }, nil
	case config.SourceFile:
		st, err := infraRepo.NewFileStorage(afero.NewOsFs(), cfg.CartStorageDir)
		if err != nil {
			return nil, nil, err
		}
		return st, func() {}, nil
	default:
		return infraRepo.NewMemoryStorage(), func() {}, nil
	}
}
