package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ppum-cafe/foodcourt/internal/auth"
	"github.com/ppum-cafe/foodcourt/internal/handler"
	"github.com/ppum-cafe/foodcourt/internal/order"
	"github.com/ppum-cafe/foodcourt/internal/user"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Checkout(ctx context.Context, userID uuid.UUID, method order.PaymentMethod) (*order.TrackingView, error) {
	args := m.Called(ctx, userID, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.TrackingView), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, orderID, requesterID uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, orderID, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) GetTracking(ctx context.Context, orderID, requesterID uuid.UUID) (*order.TrackingView, error) {
	args := m.Called(ctx, orderID, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.TrackingView), args.Error(1)
}

func (m *MockOrderService) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderService) ListStallOrders(ctx context.Context, stallID uuid.UUID) ([]order.Order, error) {
	args := m.Called(ctx, stallID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderService) ListStallTrackers(ctx context.Context, stallID uuid.UUID, status order.TrackerStatus) ([]order.FoodTracker, error) {
	args := m.Called(ctx, stallID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.FoodTracker), args.Error(1)
}

func (m *MockOrderService) UpdateTrackerStatus(ctx context.Context, trackerID uuid.UUID, status order.TrackerStatus, ownerStallID *uuid.UUID) (*order.FoodTracker, error) {
	args := m.Called(ctx, trackerID, status, ownerStallID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.FoodTracker), args.Error(1)
}

func authedRequest(t *testing.T, method, target string, body []byte, claims *auth.Claims) *http.Request {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if claims != nil {
		req = req.WithContext(auth.WithClaims(req.Context(), claims))
	}
	return req
}

func orderRouter(svc order.Service) *chi.Mux {
	r := chi.NewRouter()
	h := handler.NewOrderHandler(svc)
	h.RegisterRoutes(r)
	h.RegisterAdminRoutes(r)
	return r
}

func TestOrderHandler_Checkout_Success(t *testing.T) {
	mockService := new(MockOrderService)
	router := orderRouter(mockService)

	userID := uuid.Must(uuid.NewV4())
	view := &order.TrackingView{
		Order:       &order.Order{ID: uuid.Must(uuid.NewV4()), UserID: userID, OrderNumber: "1234"},
		QueuedItems: []order.FoodTracker{{Status: order.TrackerQueued}},
	}

	mockService.On("Checkout", mock.Anything, userID, order.PaymentOnline).
		Return(view, nil).
		Once()

	body, err := json.Marshal(handler.CheckoutRequest{PaymentMethod: string(order.PaymentOnline)})
	require.NoError(t, err)

	req := authedRequest(t, http.MethodPost, "/orders", body, &auth.Claims{UserID: userID, Role: user.RoleUser})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var got order.TrackingView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "1234", got.Order.OrderNumber)
	assert.Len(t, got.QueuedItems, 1)
	mockService.AssertExpectations(t)
}

func TestOrderHandler_Checkout_EmptyCart(t *testing.T) {
	mockService := new(MockOrderService)
	router := orderRouter(mockService)
	userID := uuid.Must(uuid.NewV4())

	mockService.On("Checkout", mock.Anything, userID, order.PaymentCash).
		Return(nil, order.ErrEmptyCart).
		Once()

	body, _ := json.Marshal(handler.CheckoutRequest{PaymentMethod: string(order.PaymentCash)})
	req := authedRequest(t, http.MethodPost, "/orders", body, &auth.Claims{UserID: userID, Role: user.RoleUser})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderHandler_Checkout_MissingPaymentMethod(t *testing.T) {
	mockService := new(MockOrderService)
	router := orderRouter(mockService)

	req := authedRequest(t, http.MethodPost, "/orders", []byte(`{}`), &auth.Claims{UserID: uuid.Must(uuid.NewV4())})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockService.AssertNotCalled(t, "Checkout", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderHandler_Checkout_Unauthenticated(t *testing.T) {
	router := orderRouter(new(MockOrderService))

	body, _ := json.Marshal(handler.CheckoutRequest{PaymentMethod: string(order.PaymentOnline)})
	req := authedRequest(t, http.MethodPost, "/orders", body, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOrderHandler_GetTracking(t *testing.T) {
	mockService := new(MockOrderService)
	router := orderRouter(mockService)

	userID := uuid.Must(uuid.NewV4())
	orderID := uuid.Must(uuid.NewV4())
	view := &order.TrackingView{
		Order:          &order.Order{ID: orderID, UserID: userID, Status: order.OrderPartiallyReady},
		ReadyItems:     []order.FoodTracker{{Status: order.TrackerReady}},
		PreparingItems: []order.FoodTracker{{Status: order.TrackerPreparing}},
		QueuedItems:    []order.FoodTracker{},
	}

	mockService.On("GetTracking", mock.Anything, orderID, userID).Return(view, nil).Once()

	req := authedRequest(t, http.MethodGet, "/orders/"+orderID.String()+"/tracking", nil, &auth.Claims{UserID: userID})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got order.TrackingView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, order.OrderPartiallyReady, got.Order.Status)
	assert.Len(t, got.ReadyItems, 1)
	assert.Len(t, got.PreparingItems, 1)
	assert.Empty(t, got.QueuedItems)
}

func TestOrderHandler_GetOrder_NotOwner(t *testing.T) {
	mockService := new(MockOrderService)
	router := orderRouter(mockService)

	orderID := uuid.Must(uuid.NewV4())
	requester := uuid.Must(uuid.NewV4())

	mockService.On("GetOrder", mock.Anything, orderID, requester).
		Return(nil, order.ErrNotOrderOwner).
		Once()

	req := authedRequest(t, http.MethodGet, "/orders/"+orderID.String(), nil, &auth.Claims{UserID: requester})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestOrderHandler_GetOrder_BadID(t *testing.T) {
	router := orderRouter(new(MockOrderService))

	req := authedRequest(t, http.MethodGet, "/orders/not-a-uuid", nil, &auth.Claims{UserID: uuid.Must(uuid.NewV4())})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderHandler_ListUserOrders_ForbiddenForOtherUser(t *testing.T) {
	mockService := new(MockOrderService)
	router := orderRouter(mockService)

	req := authedRequest(t, http.MethodGet, "/orders/user/"+uuid.Must(uuid.NewV4()).String(), nil,
		&auth.Claims{UserID: uuid.Must(uuid.NewV4()), Role: user.RoleUser})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	mockService.AssertNotCalled(t, "ListUserOrders", mock.Anything, mock.Anything)
}

func TestOrderHandler_UpdateTrackerStatus(t *testing.T) {
	mockService := new(MockOrderService)
	router := orderRouter(mockService)

	trackerID := uuid.Must(uuid.NewV4())
	updated := &order.FoodTracker{ID: trackerID, Status: order.TrackerPreparing}

	mockService.On("UpdateTrackerStatus", mock.Anything, trackerID, order.TrackerPreparing, (*uuid.UUID)(nil)).
		Return(updated, nil).
		Once()

	req := authedRequest(t, http.MethodPut,
		"/orders/food-trackers/"+trackerID.String()+"/status?status=Preparing", nil,
		&auth.Claims{UserID: uuid.Must(uuid.NewV4()), Role: user.RoleAdmin})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got order.FoodTracker
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, order.TrackerPreparing, got.Status)
}

func TestOrderHandler_UpdateTrackerStatus_MissingStatus(t *testing.T) {
	mockService := new(MockOrderService)
	router := orderRouter(mockService)

	req := authedRequest(t, http.MethodPut,
		"/orders/food-trackers/"+uuid.Must(uuid.NewV4()).String()+"/status", nil,
		&auth.Claims{Role: user.RoleAdmin})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockService.AssertNotCalled(t, "UpdateTrackerStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderHandler_UpdateTrackerStatus_InvalidTransition(t *testing.T) {
	mockService := new(MockOrderService)
	router := orderRouter(mockService)
	trackerID := uuid.Must(uuid.NewV4())

	mockService.On("UpdateTrackerStatus", mock.Anything, trackerID, order.TrackerReady, (*uuid.UUID)(nil)).
		Return(nil, order.ErrInvalidStatusTransition).
		Once()

	req := authedRequest(t, http.MethodPut,
		"/orders/food-trackers/"+trackerID.String()+"/status?status=Ready", nil,
		&auth.Claims{Role: user.RoleAdmin})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
