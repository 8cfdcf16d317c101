package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/mercado-facil/internal"
	adminuserMongo "github.com/frahmantamala/mercado-facil/internal/adminuser/mongo"
	"github.com/frahmantamala/mercado-facil/pkg/logger"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run db migration files under db/migrations directory",
		Long:  `Apply SQL migrations with goose when store.driver is postgres, or create collection indexes when it is mongo.`,
	}
	migrateRollback bool
	migrateDir      string
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
	migrateCmd.PersistentFlags().StringVarP(&migrateDir, "dir", "d", "db/migrations", "sql migrations directory")
}

func runMigration(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if cfg.Store.Driver == internal.StoreDriverMongo {
		return migrateMongo(ctx, cfg)
	}

	db, err := goose.OpenDBWithDriver("pgx", cfg.Database.Source)
	if err != nil {
		return fmt.Errorf("goose: failed to open DB: %w", err)
	}
	defer db.Close()
	goose.SetTableName("schema_migrations")

	direction := "up"
	if migrateRollback {
		direction = "down"
	}
	if err := goose.RunContext(ctx, direction, db, migrateDir); err != nil {
		return fmt.Errorf("goose %s: %w", direction, err)
	}

	logger.L().Info("migration finished", "direction", direction, "dir", migrateDir)
	return nil
}

func migrateMongo(ctx context.Context, cfg *internal.Config) error {
	if migrateRollback {
		return fmt.Errorf("rollback is not supported for the mongo store")
	}

	client, err := initMongo(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	ctx, cancel := internal.WithTimeout(ctx, cfg.Mongo.ConnectTimeout)
	defer cancel()

	repo := adminuserMongo.NewAdminUserRepository(client.Database(cfg.Mongo.Database))
	if err := repo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	logger.L().Info("mongo indexes ensured", "database", cfg.Mongo.Database)
	return nil
}
