package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeAdminUserPermissionsChanged = "admin_user.permissions_changed"
	EventTypeAdminUserLoggedOut          = "admin_user.logged_out"
)

// AdminUserEvent is published whenever cached authorization decisions for an
// admin user stop being valid.
type AdminUserEvent struct {
	BaseEvent
	AdminUserID string `json:"admin_user_id"`
	ChangedBy   string `json:"changed_by,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

func newAdminUserEvent(eventType, adminUserID, changedBy, reason string) *AdminUserEvent {
	return &AdminUserEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"admin_user_id": adminUserID,
				"changed_by":    changedBy,
				"reason":        reason,
			},
		},
		AdminUserID: adminUserID,
		ChangedBy:   changedBy,
		Reason:      reason,
	}
}

// NewPermissionsChangedEvent covers role edits, permission toggles and deactivation.
func NewPermissionsChangedEvent(adminUserID, changedBy, reason string) *AdminUserEvent {
	return newAdminUserEvent(EventTypeAdminUserPermissionsChanged, adminUserID, changedBy, reason)
}

func NewLoggedOutEvent(adminUserID string) *AdminUserEvent {
	return newAdminUserEvent(EventTypeAdminUserLoggedOut, adminUserID, adminUserID, "logout")
}

// AdminUserIDOf extracts the admin user id from events published by this package.
func AdminUserIDOf(event Event) (string, bool) {
	switch e := event.(type) {
	case *AdminUserEvent:
		return e.AdminUserID, e.AdminUserID != ""
	case AdminUserEvent:
		return e.AdminUserID, e.AdminUserID != ""
	}
	if data, ok := event.Payload().(map[string]interface{}); ok {
		if id, ok := data["admin_user_id"].(string); ok && id != "" {
			return id, true
		}
	}
	return "", false
}
