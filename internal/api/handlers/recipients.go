package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/daeho/careops/internal/api/dto"
	"github.com/daeho/careops/internal/api/middleware"
	"github.com/daeho/careops/internal/api/validation"
	"github.com/daeho/careops/internal/database/models"
	"github.com/daeho/careops/internal/rental"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type RecipientHandler struct {
	rental *rental.Service
}

func NewRecipientHandler(rentalService *rental.Service) *RecipientHandler {
	return &RecipientHandler{rental: rentalService}
}

// CreateRecipientRequest represents the request to enroll a recipient
type CreateRecipientRequest struct {
	Name       string `json:"name"`
	LtcNumber  string `json:"ltc_number"`
	CopayRate  int    `json:"copay_rate"`
	ExpiryDate string `json:"expiry_date,omitempty"` // YYYY-MM-DD
}

func (r CreateRecipientRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Name == "" {
		errors["name"] = "Name is required"
	}
	if r.LtcNumber == "" {
		errors["ltc_number"] = "LTC number is required"
	} else if !validation.IsValidLtcNumber(r.LtcNumber) {
		errors["ltc_number"] = "Invalid LTC number format"
	}
	if !models.IsValidCopayRate(r.CopayRate) {
		errors["copay_rate"] = "Co-pay rate must be one of 0, 6, 9, 15"
	}
	if r.ExpiryDate != "" {
		if _, err := time.Parse("2006-01-02", r.ExpiryDate); err != nil {
			errors["expiry_date"] = "Expiry date must be YYYY-MM-DD"
		}
	}
	return errors
}

// UpdateRecipientRequest patches recipient fields; omitted fields are
// left unchanged. The limit balance is not updatable here.
type UpdateRecipientRequest struct {
	Name       *string `json:"name,omitempty"`
	LtcNumber  *string `json:"ltc_number,omitempty"`
	CopayRate  *int    `json:"copay_rate,omitempty"`
	ExpiryDate *string `json:"expiry_date,omitempty"`
}

func (r UpdateRecipientRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Name != nil && *r.Name == "" {
		errors["name"] = "Name cannot be empty"
	}
	if r.LtcNumber != nil && !validation.IsValidLtcNumber(*r.LtcNumber) {
		errors["ltc_number"] = "Invalid LTC number format"
	}
	if r.CopayRate != nil && !models.IsValidCopayRate(*r.CopayRate) {
		errors["copay_rate"] = "Co-pay rate must be one of 0, 6, 9, 15"
	}
	if r.ExpiryDate != nil {
		if _, err := time.Parse("2006-01-02", *r.ExpiryDate); err != nil {
			errors["expiry_date"] = "Expiry date must be YYYY-MM-DD"
		}
	}
	return errors
}

type TopUpRequest struct {
	Amount int64 `json:"amount"`
}

// RecipientResponse is a recipient in API responses. The LTC number is
// only ever exposed masked.
type RecipientResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	LtcNumber    string `json:"ltc_number"`
	CopayRate    int    `json:"copay_rate"`
	LimitBalance int64  `json:"limit_balance"`
	ExpiryDate   string `json:"expiry_date,omitempty"`
	CreatedAt    string `json:"created_at"`
}

func (h *RecipientHandler) toResponse(recipient *models.Recipient) RecipientResponse {
	masked, err := h.rental.MaskedLtcNumber(recipient)
	if err != nil {
		masked = ""
	}
	resp := RecipientResponse{
		ID:           recipient.ID.String(),
		Name:         recipient.Name,
		LtcNumber:    masked,
		CopayRate:    recipient.CopayRate,
		LimitBalance: recipient.LimitBalance,
		CreatedAt:    recipient.CreatedAt.Format(time.RFC3339),
	}
	if recipient.ExpiryDate != nil {
		resp.ExpiryDate = recipient.ExpiryDate.Format("2006-01-02")
	}
	return resp
}

// List handles GET /api/v1/recipients
func (h *RecipientHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrganizationID(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	recipients, err := h.rental.ListRecipients(r.Context(), orgID, rental.ListRecipientsOptions{
		Search: r.URL.Query().Get("search"),
		Limit:  limit,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list recipients"})
		return
	}

	response := make([]RecipientResponse, len(recipients))
	for i := range recipients {
		response[i] = h.toResponse(&recipients[i])
	}
	writeJSON(w, http.StatusOK, response)
}

// Create handles POST /api/v1/recipients
func (h *RecipientHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrganizationID(r.Context())

	var req CreateRecipientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	input := rental.CreateRecipientInput{
		Name:      req.Name,
		LtcNumber: req.LtcNumber,
		CopayRate: req.CopayRate,
	}
	if req.ExpiryDate != "" {
		expiry, _ := time.Parse("2006-01-02", req.ExpiryDate)
		input.ExpiryDate = &expiry
	}

	recipient, err := h.rental.CreateRecipient(r.Context(), orgID, input)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create recipient"})
		return
	}

	writeJSON(w, http.StatusCreated, h.toResponse(recipient))
}

// Get handles GET /api/v1/recipients/:id
func (h *RecipientHandler) Get(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrganizationID(r.Context())

	recipientID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid recipient ID"})
		return
	}

	recipient, err := h.rental.GetRecipient(r.Context(), orgID, recipientID)
	if err != nil {
		if errors.Is(err, rental.ErrRecipientNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Recipient not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get recipient"})
		return
	}

	writeJSON(w, http.StatusOK, h.toResponse(recipient))
}

// Update handles PATCH /api/v1/recipients/:id
func (h *RecipientHandler) Update(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrganizationID(r.Context())

	recipientID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid recipient ID"})
		return
	}

	var req UpdateRecipientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	input := rental.UpdateRecipientInput{
		Name:      req.Name,
		LtcNumber: req.LtcNumber,
		CopayRate: req.CopayRate,
	}
	if req.ExpiryDate != nil {
		expiry, _ := time.Parse("2006-01-02", *req.ExpiryDate)
		input.ExpiryDate = &expiry
	}

	recipient, err := h.rental.UpdateRecipient(r.Context(), orgID, recipientID, input)
	if err != nil {
		if errors.Is(err, rental.ErrRecipientNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Recipient not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update recipient"})
		return
	}

	writeJSON(w, http.StatusOK, h.toResponse(recipient))
}

// Balance handles GET /api/v1/recipients/:id/balance
func (h *RecipientHandler) Balance(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrganizationID(r.Context())

	recipientID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid recipient ID"})
		return
	}

	balance, err := h.rental.GetRecipientBalance(r.Context(), orgID, recipientID)
	if err != nil {
		if errors.Is(err, rental.ErrRecipientNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Recipient not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get balance"})
		return
	}

	writeJSON(w, http.StatusOK, balance)
}

// TopUp handles POST /api/v1/recipients/:id/topup
func (h *RecipientHandler) TopUp(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrganizationID(r.Context())

	recipientID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid recipient ID"})
		return
	}

	var req TopUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Amount <= 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Amount must be positive"})
		return
	}

	recipient, err := h.rental.TopUpLimit(r.Context(), orgID, recipientID, req.Amount)
	if err != nil {
		if errors.Is(err, rental.ErrRecipientNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Recipient not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to top up"})
		return
	}

	writeJSON(w, http.StatusOK, h.toResponse(recipient))
}
