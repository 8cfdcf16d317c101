package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/mercado-facil/internal"
	"github.com/frahmantamala/mercado-facil/internal/adminuser"
	adminuserMongo "github.com/frahmantamala/mercado-facil/internal/adminuser/mongo"
	adminuserPostgres "github.com/frahmantamala/mercado-facil/internal/adminuser/postgres"
	"github.com/frahmantamala/mercado-facil/internal/core/events"
	"github.com/frahmantamala/mercado-facil/internal/permission"
	"github.com/frahmantamala/mercado-facil/internal/report"
	reportMongo "github.com/frahmantamala/mercado-facil/internal/report/mongo"
	reportPostgres "github.com/frahmantamala/mercado-facil/internal/report/postgres"
	"github.com/frahmantamala/mercado-facil/internal/transport/rest"
	"github.com/frahmantamala/mercado-facil/pkg/logger"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// recordWriter is implemented by both record stores and used by the seeder.
type recordWriter interface {
	Save(ctx context.Context, products []report.Product, customers []report.Customer, orders []report.Order) error
}

type Dependencies struct {
	Config *internal.Config
	Logger *slog.Logger

	DB    *sqlx.DB
	Gorm  *gorm.DB
	Mongo *mongo.Client
	Redis *redis.Client

	AdminUsers adminuser.RepositoryAPI
	Records    report.RecordStore
	Writer     recordWriter

	Bus              *events.EventBus
	Engine           *permission.Engine
	AdminUserService *adminuser.Service
	ReportService    *report.Service
}

func initializeDependencies(ctx context.Context, cfg *internal.Config) (*Dependencies, error) {
	deps := &Dependencies{Config: cfg, Logger: logger.L()}

	if err := deps.openStore(ctx); err != nil {
		deps.Close(ctx)
		return nil, err
	}

	cache, err := deps.permissionCache(ctx)
	if err != nil {
		deps.Close(ctx)
		return nil, err
	}

	loc, err := cfg.Reports.Location()
	if err != nil {
		deps.Close(ctx)
		return nil, err
	}

	deps.Bus = events.NewEventBus(deps.Logger)
	deps.AdminUserService = adminuser.NewService(deps.AdminUsers, deps.Bus, deps.Logger)
	deps.Engine = permission.NewEngine(deps.AdminUserService, cache, deps.Logger)
	deps.Engine.Subscribe(deps.Bus)

	deps.ReportService = report.NewService(deps.Records, report.Options{
		Location: loc,
		Stock: report.StockOptions{
			Threshold:     cfg.Reports.LowStockThreshold,
			CriticalRatio: cfg.Reports.CriticalRatio,
			LowRatio:      cfg.Reports.LowRatio,
		},
		InactivityDays: cfg.Reports.InactivityDays,
		TrailingMonths: cfg.Reports.TrailingMonths,
		VIPTopK:        cfg.Reports.VIPTopK,
		TopProducts:    cfg.Reports.TopProducts,
		FetchTimeout:   cfg.Reports.FetchTimeout,
	}, deps.Logger)

	return deps, nil
}

func (d *Dependencies) openStore(ctx context.Context) error {
	switch d.Config.Store.Driver {
	case internal.StoreDriverMongo:
		client, err := initMongo(ctx, d.Config.Mongo)
		if err != nil {
			return fmt.Errorf("failed to initialize mongo: %w", err)
		}
		d.Mongo = client

		db := client.Database(d.Config.Mongo.Database)
		d.AdminUsers = adminuserMongo.NewAdminUserRepository(db)
		records := reportMongo.NewRecordStore(db)
		d.Records, d.Writer = records, records
	default:
		db, err := initDB(d.Config.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		d.DB = db

		gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
			Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
			TranslateError: true,
		})
		if err != nil {
			return fmt.Errorf("failed to open gorm: %w", err)
		}
		d.Gorm = gdb

		d.AdminUsers = adminuserPostgres.NewAdminUserRepository(gdb)
		records := reportPostgres.NewRecordStore(gdb)
		d.Records, d.Writer = records, records
	}
	return nil
}

func (d *Dependencies) permissionCache(ctx context.Context) (permission.Cache, error) {
	cfg := d.Config.PermissionCache
	if cfg.Driver != internal.CacheDriverRedis {
		return permission.NewMemoryCache(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	d.Redis = client
	return permission.NewRedisCache(client, cfg.KeyPrefix, cfg.TTL), nil
}

// HealthChecks lists a readiness probe for every backing service in use.
func (d *Dependencies) HealthChecks() map[string]rest.CheckFunc {
	checks := map[string]rest.CheckFunc{}
	if d.DB != nil {
		checks["postgres"] = d.DB.PingContext
	}
	if d.Mongo != nil {
		checks["mongo"] = func(ctx context.Context) error {
			return d.Mongo.Ping(ctx, readpref.Primary())
		}
	}
	if d.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return d.Redis.Ping(ctx).Err()
		}
	}
	return checks
}

func (d *Dependencies) Close(ctx context.Context) {
	if d.Bus != nil {
		d.Bus.Wait()
	}
	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			d.Logger.Error("database close error", "error", err)
		}
	}
	if d.Mongo != nil {
		if err := d.Mongo.Disconnect(ctx); err != nil {
			d.Logger.Error("mongo disconnect error", "error", err)
		}
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error("redis close error", "error", err)
		}
	}
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return dbConn, nil
}

func initMongo(ctx context.Context, cfg internal.MongoConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client, nil
}
