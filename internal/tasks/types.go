package tasks

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeMaintenanceTick   = "maintenance:tick"
	TypeSanitationOverdue = "maintenance:sanitation_overdue"
	TypeExpiryCheck       = "maintenance:expiry_check"
)

// MaintenanceTickPayload is empty - the tick fans out per-organization
// checks for every active organization.
type MaintenanceTickPayload struct{}

func NewMaintenanceTickTask() *asynq.Task {
	return asynq.NewTask(TypeMaintenanceTick, nil)
}

// SanitationOverduePayload scopes the overdue-sanitation sweep to one
// organization.
type SanitationOverduePayload struct {
	OrganizationID uuid.UUID `json:"organization_id"`
}

func NewSanitationOverdueTask(payload SanitationOverduePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeSanitationOverdue, data), nil
}

// ExpiryCheckPayload scopes the certification-expiry sweep to one
// organization.
type ExpiryCheckPayload struct {
	OrganizationID uuid.UUID `json:"organization_id"`
}

func NewExpiryCheckTask(payload ExpiryCheckPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeExpiryCheck, data), nil
}
