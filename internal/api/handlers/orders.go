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

type OrderHandler struct {
	rental *rental.Service
}

func NewOrderHandler(rentalService *rental.Service) *OrderHandler {
	return &OrderHandler{rental: rentalService}
}

type OrderItemRequest struct {
	AssetID   *string `json:"asset_id,omitempty"`
	ProductID *string `json:"product_id,omitempty"`
	Price     int64   `json:"price"`
}

// CreateOrderRequest represents the settlement request for one rental
// transaction.
type CreateOrderRequest struct {
	RecipientID string             `json:"recipient_id"`
	OrderDate   string             `json:"order_date,omitempty"` // YYYY-MM-DD, defaults to today
	Items       []OrderItemRequest `json:"items"`
}

func (r CreateOrderRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.RecipientID == "" {
		errors["recipient_id"] = "Recipient ID is required"
	} else if _, err := uuid.Parse(r.RecipientID); err != nil {
		errors["recipient_id"] = "Invalid recipient ID format"
	}
	if len(r.Items) == 0 {
		errors["items"] = "At least one item is required"
	}
	for _, item := range r.Items {
		if item.AssetID != nil && *item.AssetID != "" {
			if _, err := uuid.Parse(*item.AssetID); err != nil {
				errors["items"] = "Invalid asset ID format"
			}
		}
		if item.ProductID != nil && *item.ProductID != "" {
			if _, err := uuid.Parse(*item.ProductID); err != nil {
				errors["items"] = "Invalid product ID format"
			}
		}
	}
	if r.OrderDate != "" {
		if _, err := time.Parse("2006-01-02", r.OrderDate); err != nil {
			errors["order_date"] = "Order date must be YYYY-MM-DD"
		}
	}
	return errors
}

type OrderItemResponse struct {
	ID        string  `json:"id"`
	AssetID   *string `json:"asset_id,omitempty"`
	ProductID *string `json:"product_id,omitempty"`
	Price     int64   `json:"price"`
}

type OrderResponse struct {
	ID            string              `json:"id"`
	RecipientID   string              `json:"recipient_id"`
	RecipientName string              `json:"recipient_name,omitempty"`
	TotalAmount   int64               `json:"total_amount"`
	CopayAmount   int64               `json:"copay_amount"`
	ClaimAmount   int64               `json:"claim_amount"`
	OrderDate     string              `json:"order_date"`
	Items         []OrderItemResponse `json:"items,omitempty"`
	CreatedAt     string              `json:"created_at"`
}

func orderToResponse(order *models.Order) OrderResponse {
	resp := OrderResponse{
		ID:          order.ID.String(),
		RecipientID: order.RecipientID.String(),
		TotalAmount: order.TotalAmount,
		CopayAmount: order.CopayAmount,
		ClaimAmount: order.ClaimAmount,
		OrderDate:   order.OrderDate.Format("2006-01-02"),
		CreatedAt:   order.CreatedAt.Format(time.RFC3339),
	}
	if order.Recipient != nil {
		resp.RecipientName = order.Recipient.Name
	}
	for _, item := range order.Items {
		itemResp := OrderItemResponse{
			ID:    item.ID.String(),
			Price: item.Price,
		}
		if item.AssetID != nil {
			s := item.AssetID.String()
			itemResp.AssetID = &s
		}
		if item.ProductID != nil {
			s := item.ProductID.String()
			itemResp.ProductID = &s
		}
		resp.Items = append(resp.Items, itemResp)
	}
	return resp
}

// List handles GET /api/v1/orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrganizationID(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	orders, err := h.rental.ListOrders(r.Context(), orgID, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list orders"})
		return
	}

	response := make([]OrderResponse, len(orders))
	for i := range orders {
		response[i] = orderToResponse(&orders[i])
	}
	writeJSON(w, http.StatusOK, response)
}

// Get handles GET /api/v1/orders/:id
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrganizationID(r.Context())

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid order ID"})
		return
	}

	order, err := h.rental.GetOrder(r.Context(), orgID, orderID)
	if err != nil {
		if errors.Is(err, rental.ErrOrderNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Order not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get order"})
		return
	}

	writeJSON(w, http.StatusOK, orderToResponse(order))
}

// Create handles POST /api/v1/orders. The whole settlement is atomic:
// either the order exists with the balance reserved and every asset
// line rented, or nothing changed.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrganizationID(r.Context())
	userID := middleware.GetUserID(r.Context())

	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	recipientID, _ := uuid.Parse(req.RecipientID)
	input := rental.SettleOrderInput{
		RecipientID: recipientID,
		Items:       make([]rental.SettleItem, 0, len(req.Items)),
	}
	if userID != uuid.Nil {
		input.UserID = &userID
	}
	if req.OrderDate != "" {
		input.OrderDate, _ = time.Parse("2006-01-02", req.OrderDate)
	}
	for _, item := range req.Items {
		settleItem := rental.SettleItem{Price: item.Price}
		if item.AssetID != nil && *item.AssetID != "" {
			assetID, _ := uuid.Parse(*item.AssetID)
			settleItem.AssetID = &assetID
		}
		if item.ProductID != nil && *item.ProductID != "" {
			productID, _ := uuid.Parse(*item.ProductID)
			settleItem.ProductID = &productID
		}
		input.Items = append(input.Items, settleItem)
	}

	order, err := h.rental.SettleOrder(r.Context(), orgID, input)
	if err != nil {
		var limitErr *rental.LimitExceededError
		var transitionErr *rental.InvalidTransitionError
		switch {
		case errors.Is(err, rental.ErrRecipientNotFound):
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Recipient not found"})
		case errors.Is(err, rental.ErrAssetNotFound):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Asset not found"})
		case errors.Is(err, rental.ErrProductNotFound):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Product not found"})
		case errors.Is(err, rental.ErrEmptyOrder), errors.Is(err, rental.ErrInvalidItem):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		case errors.As(err, &limitErr):
			writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{
				Error: "Limit exceeded",
				Details: map[string]string{
					"limit_balance": strconv.FormatInt(limitErr.LimitBalance, 10),
					"copay_amount":  strconv.FormatInt(limitErr.CopayAmount, 10),
					"shortfall":     strconv.FormatInt(limitErr.Shortfall, 10),
				},
			})
		case errors.As(err, &transitionErr):
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: transitionErr.Error()})
		case errors.Is(err, rental.ErrConflict):
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Settlement conflicted with a concurrent order, try again"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Settlement failed"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, orderToResponse(order))
}
