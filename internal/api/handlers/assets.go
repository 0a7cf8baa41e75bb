package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/daeho/careops/internal/api/dto"
	"github.com/daeho/careops/internal/api/middleware"
	"github.com/daeho/careops/internal/database/models"
	"github.com/daeho/careops/internal/rental"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type AssetHandler struct {
	rental *rental.Service
}

func NewAssetHandler(rentalService *rental.Service) *AssetHandler {
	return &AssetHandler{rental: rentalService}
}

// CreateAssetRequest represents the request to register a physical unit
type CreateAssetRequest struct {
	ProductID    *string `json:"product_id,omitempty"`
	SerialNumber string  `json:"serial_number,omitempty"`
	QRCode       string  `json:"qr_code"`
}

func (r CreateAssetRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.QRCode == "" {
		errors["qr_code"] = "QR code is required"
	}
	if r.ProductID != nil && *r.ProductID != "" {
		if _, err := uuid.Parse(*r.ProductID); err != nil {
			errors["product_id"] = "Invalid product ID format"
		}
	}
	return errors
}

// TransitionRequest asks for a lifecycle change: return from a
// recipient, sanitation completion or write-off.
type TransitionRequest struct {
	Status string `json:"status"`
}

// AssetResponse represents an asset in API responses
type AssetResponse struct {
	ID                 string  `json:"id"`
	ProductID          *string `json:"product_id,omitempty"`
	ProductName        string  `json:"product_name,omitempty"`
	SerialNumber       string  `json:"serial_number,omitempty"`
	QRCode             string  `json:"qr_code"`
	Status             string  `json:"status"`
	CurrentRecipientID *string `json:"current_recipient_id,omitempty"`
	LastSanitizedAt    string  `json:"last_sanitized_at,omitempty"`
	CreatedAt          string  `json:"created_at"`
}

func assetToResponse(asset *models.Asset) AssetResponse {
	resp := AssetResponse{
		ID:           asset.ID.String(),
		SerialNumber: asset.SerialNumber,
		QRCode:       asset.QRCode,
		Status:       string(asset.Status),
		CreatedAt:    asset.CreatedAt.Format(time.RFC3339),
	}
	if asset.ProductID != nil {
		s := asset.ProductID.String()
		resp.ProductID = &s
	}
	if asset.Product != nil {
		resp.ProductName = asset.Product.Name
	}
	if asset.CurrentRecipientID != nil {
		s := asset.CurrentRecipientID.String()
		resp.CurrentRecipientID = &s
	}
	if asset.LastSanitizedAt != nil {
		resp.LastSanitizedAt = asset.LastSanitizedAt.Format(time.RFC3339)
	}
	return resp
}

// List handles GET /api/v1/assets
func (h *AssetHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrganizationID(r.Context())

	opts := rental.ListAssetsOptions{
		Search: r.URL.Query().Get("search"),
	}
	if limit, _ := strconv.Atoi(r.URL.Query().Get("limit")); limit > 0 {
		opts.Limit = limit
	}
	if status := r.URL.Query().Get("status"); status != "" {
		if !models.IsValidAssetStatus(models.AssetStatus(status)) {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid status filter"})
			return
		}
		opts.Status = models.AssetStatus(status)
	}

	assets, err := h.rental.ListAssets(r.Context(), orgID, opts)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list assets"})
		return
	}

	response := make([]AssetResponse, len(assets))
	for i := range assets {
		response[i] = assetToResponse(&assets[i])
	}
	writeJSON(w, http.StatusOK, response)
}

// Create handles POST /api/v1/assets
func (h *AssetHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrganizationID(r.Context())

	var req CreateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	input := rental.CreateAssetInput{
		SerialNumber: req.SerialNumber,
		QRCode:       req.QRCode,
	}
	if req.ProductID != nil && *req.ProductID != "" {
		productID, _ := uuid.Parse(*req.ProductID)
		input.ProductID = &productID
	}

	asset, err := h.rental.CreateAsset(r.Context(), orgID, input)
	if err != nil {
		if errors.Is(err, rental.ErrProductNotFound) {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Product not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create asset"})
		return
	}

	writeJSON(w, http.StatusCreated, assetToResponse(asset))
}

// Get handles GET /api/v1/assets/:id
func (h *AssetHandler) Get(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrganizationID(r.Context())

	assetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid asset ID"})
		return
	}

	asset, err := h.rental.GetAsset(r.Context(), orgID, assetID)
	if err != nil {
		if errors.Is(err, rental.ErrAssetNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Asset not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get asset"})
		return
	}

	writeJSON(w, http.StatusOK, assetToResponse(asset))
}

// Transition handles POST /api/v1/assets/:id/transition
func (h *AssetHandler) Transition(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrganizationID(r.Context())

	assetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid asset ID"})
		return
	}

	var req TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	to := models.AssetStatus(req.Status)
	if !models.IsValidAssetStatus(to) || to == models.AssetStatusRented {
		// Renting happens only through order settlement.
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid target status"})
		return
	}

	asset, err := h.rental.TransitionAsset(r.Context(), orgID, assetID, to)
	if err != nil {
		var transitionErr *rental.InvalidTransitionError
		switch {
		case errors.Is(err, rental.ErrAssetNotFound):
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Asset not found"})
		case errors.As(err, &transitionErr):
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: transitionErr.Error()})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to transition asset"})
		}
		return
	}

	writeJSON(w, http.StatusOK, assetToResponse(asset))
}

// Discard handles DELETE /api/v1/assets/:id. The asset row is kept for
// order history; the status moves to DISCARDED instead.
func (h *AssetHandler) Discard(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrganizationID(r.Context())

	assetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid asset ID"})
		return
	}

	asset, err := h.rental.TransitionAsset(r.Context(), orgID, assetID, models.AssetStatusDiscarded)
	if err != nil {
		var transitionErr *rental.InvalidTransitionError
		switch {
		case errors.Is(err, rental.ErrAssetNotFound):
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Asset not found"})
		case errors.As(err, &transitionErr):
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: transitionErr.Error()})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to discard asset"})
		}
		return
	}

	writeJSON(w, http.StatusOK, assetToResponse(asset))
}
