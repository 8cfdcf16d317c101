package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/mercado-facil/internal"
	"github.com/frahmantamala/mercado-facil/internal/core/events"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Publish admin user events on the bus, mainly to drop cached permission decisions from the shared cache.`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [permissions_changed|logged_out]",
	Short: "Publish an admin user event",
	Long:  `Publish an admin user event so its subscribers run, invalidating the permission cache of that admin user`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		event, err := buildAdminUserEvent(args[0], eventAdminUserID, eventReason)
		if err != nil {
			return err
		}

		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		deps, err := initializeDependencies(ctx, cfg)
		if err != nil {
			return err
		}
		defer deps.Close(context.Background())

		if cfg.PermissionCache.Driver == internal.CacheDriverMemory {
			deps.Logger.Warn("permission cache is in memory; running servers keep their own cached decisions")
		}

		deps.Logger.Info("publishing event", "event_type", event.EventType(), "event_id", event.EventID(), "admin_user_id", eventAdminUserID)
		if err := deps.Bus.PublishSync(ctx, event); err != nil {
			return fmt.Errorf("failed to publish event: %w", err)
		}
		deps.Logger.Info("event published")
		return nil
	},
}

var (
	eventAdminUserID string
	eventReason      string
)

func buildAdminUserEvent(kind, adminUserID, reason string) (events.Event, error) {
	if adminUserID == "" {
		return nil, fmt.Errorf("--admin-user-id is required")
	}
	switch kind {
	case "permissions_changed", events.EventTypeAdminUserPermissionsChanged:
		return events.NewPermissionsChangedEvent(adminUserID, "cli", reason), nil
	case "logged_out", events.EventTypeAdminUserLoggedOut:
		return events.NewLoggedOutEvent(adminUserID), nil
	}
	return nil, fmt.Errorf("unknown event type %q", kind)
}

func init() {
	publishEventCmd.Flags().StringVar(&eventAdminUserID, "admin-user-id", "", "admin user the event is about")
	publishEventCmd.Flags().StringVar(&eventReason, "reason", "manual invalidation", "reason recorded on the event")

	eventCmd.AddCommand(publishEventCmd)
}
