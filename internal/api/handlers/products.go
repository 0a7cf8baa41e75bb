package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/daeho/careops/internal/api/dto"
	"github.com/daeho/careops/internal/database/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductHandler serves the device master catalog. Products are shared
// across tenants; mutations are restricted to the owner role at the
// router.
type ProductHandler struct {
	db *gorm.DB
}

func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db}
}

type CreateProductRequest struct {
	Code            string `json:"code"`
	Name            string `json:"name"`
	Price           int64  `json:"price"`
	Category        string `json:"category,omitempty"`
	DurabilityYears int    `json:"durability_years,omitempty"`
}

func (r CreateProductRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Code == "" {
		errors["code"] = "Code is required"
	}
	if r.Name == "" {
		errors["name"] = "Name is required"
	}
	if r.Price < 0 {
		errors["price"] = "Price must be non-negative"
	}
	if r.DurabilityYears < 0 {
		errors["durability_years"] = "Durability years must be non-negative"
	}
	return errors
}

// List handles GET /api/v1/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	query := h.db.Model(&models.Product{})

	if category := r.URL.Query().Get("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if search := r.URL.Query().Get("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name LIKE ? OR code LIKE ?", pattern, pattern)
	}

	var products []models.Product
	if err := query.Order("code ASC").Find(&products).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list products"})
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// Get handles GET /api/v1/products/:id
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid product ID"})
		return
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Product not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get product"})
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Create handles POST /api/v1/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	var existing int64
	if err := h.db.Model(&models.Product{}).Where("code = ?", req.Code).Count(&existing).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create product"})
		return
	}
	if existing > 0 {
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Product code already exists"})
		return
	}

	product := models.Product{
		Code:            req.Code,
		Name:            req.Name,
		Price:           req.Price,
		Category:        req.Category,
		DurabilityYears: req.DurabilityYears,
	}
	if err := h.db.Create(&product).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create product"})
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

type UpdateProductRequest struct {
	Name            *string `json:"name,omitempty"`
	Price           *int64  `json:"price,omitempty"`
	Category        *string `json:"category,omitempty"`
	DurabilityYears *int    `json:"durability_years,omitempty"`
}

// Update handles PUT /api/v1/products/:id. The product code is the
// catalog identity and cannot be changed here.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid product ID"})
		return
	}

	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Price != nil && *req.Price < 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Price must be non-negative"})
		return
	}
	if req.DurabilityYears != nil && *req.DurabilityYears < 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Durability years must be non-negative"})
		return
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Product not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update product"})
		return
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.DurabilityYears != nil {
		product.DurabilityYears = *req.DurabilityYears
	}

	if err := h.db.Save(&product).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update product"})
		return
	}

	writeJSON(w, http.StatusOK, product)
}
