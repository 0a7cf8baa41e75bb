package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/daeho/careops/internal/database/models"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
	client *asynq.Client // used by the tick to fan out per-org tasks

	// SanitationOverdueDays is how long a unit may sit in SANITIZING
	// before it is flagged. ExpiryWindowDays is the look-ahead for
	// certification renewals.
	SanitationOverdueDays int
	ExpiryWindowDays      int
}

func NewHandler(db *gorm.DB, logger *slog.Logger, client *asynq.Client) *Handler {
	return &Handler{
		db:     db,
		logger: logger,
		client: client,

		SanitationOverdueDays: 3,
		ExpiryWindowDays:      7,
	}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeMaintenanceTick, h.HandleMaintenanceTick)
	mux.HandleFunc(TypeSanitationOverdue, h.HandleSanitationOverdue)
	mux.HandleFunc(TypeExpiryCheck, h.HandleExpiryCheck)
}

// HandleMaintenanceTick enqueues the per-organization sweeps. It runs
// on the worker's cron schedule.
func (h *Handler) HandleMaintenanceTick(ctx context.Context, t *asynq.Task) error {
	var orgs []models.Organization
	if err := h.db.WithContext(ctx).Find(&orgs).Error; err != nil {
		return fmt.Errorf("list organizations: %w", err)
	}

	h.logger.Info("maintenance tick", "organizations", len(orgs))

	for _, org := range orgs {
		overdueTask, err := NewSanitationOverdueTask(SanitationOverduePayload{OrganizationID: org.ID})
		if err != nil {
			return err
		}
		expiryTask, err := NewExpiryCheckTask(ExpiryCheckPayload{OrganizationID: org.ID})
		if err != nil {
			return err
		}

		if h.client == nil {
			continue
		}
		if _, err := h.client.EnqueueContext(ctx, overdueTask); err != nil {
			h.logger.Error("failed to enqueue sanitation sweep", "org_id", org.ID, "error", err)
		}
		if _, err := h.client.EnqueueContext(ctx, expiryTask); err != nil {
			h.logger.Error("failed to enqueue expiry sweep", "org_id", org.ID, "error", err)
		}
	}

	return nil
}

// HandleSanitationOverdue flags units that have been sitting in
// SANITIZING longer than the configured number of days.
func (h *Handler) HandleSanitationOverdue(ctx context.Context, t *asynq.Task) error {
	var payload SanitationOverduePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -h.SanitationOverdueDays)

	var assets []models.Asset
	if err := h.db.WithContext(ctx).
		Where("organization_id = ? AND status = ? AND updated_at < ?",
			payload.OrganizationID, models.AssetStatusSanitizing, cutoff).
		Find(&assets).Error; err != nil {
		return fmt.Errorf("list overdue assets: %w", err)
	}

	for _, asset := range assets {
		h.logger.Warn("sanitation overdue",
			"org_id", payload.OrganizationID,
			"asset_id", asset.ID,
			"qr_code", asset.QRCode,
			"in_sanitation_since", asset.UpdatedAt,
		)
	}

	h.logger.Info("sanitation sweep done",
		"org_id", payload.OrganizationID,
		"overdue", len(assets),
	)
	return nil
}

// HandleExpiryCheck flags recipients whose certification expires within
// the look-ahead window so staff can start the renewal.
func (h *Handler) HandleExpiryCheck(ctx context.Context, t *asynq.Task) error {
	var payload ExpiryCheckPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	now := time.Now()
	horizon := now.AddDate(0, 0, h.ExpiryWindowDays)

	var recipients []models.Recipient
	if err := h.db.WithContext(ctx).
		Where("organization_id = ? AND expiry_date IS NOT NULL AND expiry_date >= ? AND expiry_date <= ?",
			payload.OrganizationID, now, horizon).
		Find(&recipients).Error; err != nil {
		return fmt.Errorf("list expiring recipients: %w", err)
	}

	for _, r := range recipients {
		h.logger.Warn("certification expiring",
			"org_id", payload.OrganizationID,
			"recipient_id", r.ID,
			"expiry_date", r.ExpiryDate,
		)
	}

	h.logger.Info("expiry sweep done",
		"org_id", payload.OrganizationID,
		"expiring", len(recipients),
	)
	return nil
}
