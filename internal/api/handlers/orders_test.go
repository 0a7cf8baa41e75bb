package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/daeho/careops/internal/api/handlers"
	"github.com/daeho/careops/internal/api/middleware"
	"github.com/daeho/careops/internal/database/models"
	"github.com/daeho/careops/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupOrderTestRouter(t *testing.T) (*chi.Mux, *testutil.TestSetup) {
	tc := testutil.NewTestContext(t)

	r := chi.NewRouter()
	r.Use(middleware.Auth(tc.JWTService))

	handler := handlers.NewOrderHandler(tc.Rental)
	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Get("/", handler.List)
		r.Post("/", handler.Create)
		r.Get("/{id}", handler.Get)
	})

	return r, tc
}

func TestOrderHandler_Create(t *testing.T) {
	router, tc := setupOrderTestRouter(t)
	defer tc.Cleanup()

	recipient := testutil.CreateTestRecipient(t, tc.DB, tc.Encryptor, tc.Org.ID, 15, 1_600_000)
	product := testutil.CreateTestProduct(t, tc.DB, 100_000)
	asset := testutil.CreateTestAsset(t, tc.DB, tc.Org.ID, &product.ID, models.AssetStatusAvailable)

	t.Run("settle order with asset line", func(t *testing.T) {
		body := map[string]interface{}{
			"recipient_id": recipient.ID.String(),
			"order_date":   "2026-08-01",
			"items": []map[string]interface{}{
				{"asset_id": asset.ID.String(), "product_id": product.ID.String(), "price": 100_000},
			},
		}
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/orders", body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		var resp handlers.OrderResponse
		err := json.Unmarshal(rr.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.Equal(t, int64(100_000), resp.TotalAmount)
		assert.Equal(t, int64(15_000), resp.CopayAmount)
		assert.Equal(t, int64(85_000), resp.ClaimAmount)
		assert.Equal(t, "2026-08-01", resp.OrderDate)

		// The asset line rented the unit to this recipient.
		var stored models.Asset
		require.NoError(t, tc.DB.First(&stored, "id = ?", asset.ID).Error)
		assert.Equal(t, models.AssetStatusRented, stored.Status)
		require.NotNil(t, stored.CurrentRecipientID)
		assert.Equal(t, recipient.ID, *stored.CurrentRecipientID)

		// And the allowance moved by the co-pay.
		var storedRecipient models.Recipient
		require.NoError(t, tc.DB.First(&storedRecipient, "id = ?", recipient.ID).Error)
		assert.Equal(t, int64(1_585_000), storedRecipient.LimitBalance)
	})

	t.Run("limit exceeded", func(t *testing.T) {
		poor := testutil.CreateTestRecipient(t, tc.DB, tc.Encryptor, tc.Org.ID, 15, 1_000)
		body := map[string]interface{}{
			"recipient_id": poor.ID.String(),
			"items": []map[string]interface{}{
				{"product_id": product.ID.String(), "price": 100_000},
			},
		}
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/orders", body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Contains(t, rr.Body.String(), "shortfall")
	})

	t.Run("already rented asset", func(t *testing.T) {
		// asset was rented in the first subtest
		body := map[string]interface{}{
			"recipient_id": recipient.ID.String(),
			"items": []map[string]interface{}{
				{"asset_id": asset.ID.String(), "price": 100_000},
			},
		}
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/orders", body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("empty items", func(t *testing.T) {
		body := map[string]interface{}{
			"recipient_id": recipient.ID.String(),
			"items":        []map[string]interface{}{},
		}
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/orders", body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown recipient", func(t *testing.T) {
		body := map[string]interface{}{
			"recipient_id": uuid.New().String(),
			"items": []map[string]interface{}{
				{"product_id": product.ID.String(), "price": 100_000},
			},
		}
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/orders", body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("item without product or asset", func(t *testing.T) {
		body := map[string]interface{}{
			"recipient_id": recipient.ID.String(),
			"items": []map[string]interface{}{
				{"price": 100_000},
			},
		}
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/orders", body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestOrderHandler_ListAndGet(t *testing.T) {
	router, tc := setupOrderTestRouter(t)
	defer tc.Cleanup()

	recipient := testutil.CreateTestRecipient(t, tc.DB, tc.Encryptor, tc.Org.ID, 15, 1_600_000)
	product := testutil.CreateTestProduct(t, tc.DB, 50_000)

	body := map[string]interface{}{
		"recipient_id": recipient.ID.String(),
		"items": []map[string]interface{}{
			{"product_id": product.ID.String(), "price": 50_000},
		},
	}
	req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/orders", body, tc.Token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created handlers.OrderResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	t.Run("list", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/orders", nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp []handlers.OrderResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp, 1)
		assert.Equal(t, created.ID, resp[0].ID)
		assert.Equal(t, recipient.Name, resp[0].RecipientName)
	})

	t.Run("get with items", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/orders/"+created.ID, nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp handlers.OrderResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp.Items, 1)
		assert.Equal(t, int64(50_000), resp.Items[0].Price)
	})

	t.Run("unknown order", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/orders/"+uuid.New().String(), nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("foreign org sees nothing", func(t *testing.T) {
		otherOrg := testutil.CreateTestOrg(t, tc.DB)
		otherUser := testutil.CreateTestUser(t, tc.DB, otherOrg)
		otherToken := testutil.GenerateTestToken(t, tc.JWTService, otherUser)

		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/orders/"+created.ID, nil, otherToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
