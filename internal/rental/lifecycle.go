package rental

import (
	"errors"
	"time"

	"github.com/daeho/careops/internal/database/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Asset lifecycle: AVAILABLE -> RENTED -> SANITIZING -> AVAILABLE, with
// DISCARDED reachable from any non-terminal state and absorbing.
// CurrentRecipientID is set exactly on entry to RENTED and cleared
// exactly on exit from it.
//
// Every transition runs as a conditional UPDATE whose WHERE clause
// carries the expected source status. Two concurrent writers serialize
// on the row; the loser sees zero rows affected and reports
// InvalidTransitionError without mutating anything.

var allowedTransitions = map[models.AssetStatus][]models.AssetStatus{
	models.AssetStatusAvailable:  {models.AssetStatusRented, models.AssetStatusDiscarded},
	models.AssetStatusRented:     {models.AssetStatusSanitizing, models.AssetStatusDiscarded},
	models.AssetStatusSanitizing: {models.AssetStatusAvailable, models.AssetStatusDiscarded},
	models.AssetStatusDiscarded:  nil,
}

// CanTransition reports whether the lifecycle permits from -> to.
func CanTransition(from, to models.AssetStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// rentAsset moves an AVAILABLE asset to RENTED and attaches the
// recipient, inside the caller's transaction.
func rentAsset(tx *gorm.DB, orgID, assetID, recipientID uuid.UUID) error {
	res := tx.Model(&models.Asset{}).
		Where("id = ? AND organization_id = ? AND status = ?",
			assetID, orgID, models.AssetStatusAvailable).
		Updates(map[string]interface{}{
			"status":               models.AssetStatusRented,
			"current_recipient_id": recipientID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return transitionFailure(tx, orgID, assetID, models.AssetStatusRented)
	}
	return nil
}

// applyTransition performs a caller-requested transition. RENTED is not
// reachable here: renting happens only through order settlement, which
// supplies the recipient.
func applyTransition(tx *gorm.DB, orgID, assetID uuid.UUID, to models.AssetStatus) error {
	var res *gorm.DB

	switch to {
	case models.AssetStatusSanitizing:
		// Asset returned from the recipient's home.
		res = tx.Model(&models.Asset{}).
			Where("id = ? AND organization_id = ? AND status = ?",
				assetID, orgID, models.AssetStatusRented).
			Updates(map[string]interface{}{
				"status":               models.AssetStatusSanitizing,
				"current_recipient_id": nil,
			})
	case models.AssetStatusAvailable:
		// Sanitation completed.
		res = tx.Model(&models.Asset{}).
			Where("id = ? AND organization_id = ? AND status = ?",
				assetID, orgID, models.AssetStatusSanitizing).
			Updates(map[string]interface{}{
				"status":            models.AssetStatusAvailable,
				"last_sanitized_at": time.Now(),
			})
	case models.AssetStatusDiscarded:
		// Administrative write-off from any non-terminal state.
		res = tx.Model(&models.Asset{}).
			Where("id = ? AND organization_id = ? AND status <> ?",
				assetID, orgID, models.AssetStatusDiscarded).
			Updates(map[string]interface{}{
				"status":               models.AssetStatusDiscarded,
				"current_recipient_id": nil,
			})
	default:
		return transitionFailure(tx, orgID, assetID, to)
	}

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return transitionFailure(tx, orgID, assetID, to)
	}
	return nil
}

// transitionFailure classifies a guard failure: the asset is either
// missing (foreign-tenant rows look missing too) or in a state the
// lifecycle does not permit to leave toward `to`.
func transitionFailure(tx *gorm.DB, orgID, assetID uuid.UUID, to models.AssetStatus) error {
	var asset models.Asset
	err := tx.Where("id = ? AND organization_id = ?", assetID, orgID).First(&asset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrAssetNotFound
	}
	if err != nil {
		return err
	}
	return &InvalidTransitionError{From: asset.Status, To: to}
}
