package handler_test

import (
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
	"github.com/ppum-cafe/foodcourt/internal/cart"
	"github.com/ppum-cafe/foodcourt/internal/handler"
)

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Get(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartService) Add(ctx context.Context, userID, menuItemID uuid.UUID) (*cart.Cart, error) {
	args := m.Called(ctx, userID, menuItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartService) Remove(ctx context.Context, userID, menuItemID uuid.UUID) (*cart.Cart, error) {
	args := m.Called(ctx, userID, menuItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartService) SetQuantity(ctx context.Context, userID, menuItemID uuid.UUID, quantity int) (*cart.Cart, error) {
	args := m.Called(ctx, userID, menuItemID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartService) Clear(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func cartRouter(svc cart.Service) *chi.Mux {
	r := chi.NewRouter()
	handler.NewCartHandler(svc).RegisterRoutes(r)
	return r
}

func twoStallCart() *cart.Cart {
	stallA := uuid.Must(uuid.NewV4())
	stallB := uuid.Must(uuid.NewV4())
	return &cart.Cart{Lines: []cart.Line{
		{MenuItemID: uuid.Must(uuid.NewV4()), Name: "Nasi Lemak", UnitPrice: 5.00, Quantity: 2, StallID: stallA, StallName: "Malay Delights"},
		{MenuItemID: uuid.Must(uuid.NewV4()), Name: "Teh Tarik", UnitPrice: 3.00, Quantity: 1, StallID: stallB, StallName: "Drinks Corner"},
	}}
}

func TestCartHandler_GetCart(t *testing.T) {
	mockService := new(MockCartService)
	router := cartRouter(mockService)
	userID := uuid.Must(uuid.NewV4())

	mockService.On("Get", mock.Anything, userID).Return(twoStallCart(), nil).Once()

	req := authedRequest(t, http.MethodGet, "/cart", nil, &auth.Claims{UserID: userID})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got handler.CartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got.Lines, 2)
	assert.InDelta(t, 13.00, got.Totals.Subtotal, 1e-9)
	assert.InDelta(t, 14.50, got.Totals.Total, 1e-9)
}

// The cart view and the checkout summary must agree on the stall grouping.
func TestCartHandler_SummaryGroupsMatchCartLines(t *testing.T) {
	mockService := new(MockCartService)
	router := cartRouter(mockService)
	userID := uuid.Must(uuid.NewV4())
	c := twoStallCart()

	mockService.On("Get", mock.Anything, userID).Return(c, nil).Once()

	req := authedRequest(t, http.MethodGet, "/cart/summary", nil, &auth.Claims{UserID: userID})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got handler.CartSummaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Stalls, 2)
	assert.Equal(t, "Malay Delights", got.Stalls[0].StallName)
	assert.Equal(t, "Drinks Corner", got.Stalls[1].StallName)

	var total int
	for _, group := range got.Stalls {
		total += len(group.Lines)
	}
	assert.Equal(t, len(c.Lines), total)
	assert.InDelta(t, c.Totals().Total, got.Totals.Total, 1e-9)
}

func TestCartHandler_AddItem(t *testing.T) {
	mockService := new(MockCartService)
	router := cartRouter(mockService)
	userID := uuid.Must(uuid.NewV4())
	menuItemID := uuid.Must(uuid.NewV4())

	mockService.On("Add", mock.Anything, userID, menuItemID).Return(twoStallCart(), nil).Once()

	body, _ := json.Marshal(handler.AddCartItemRequest{MenuItemID: menuItemID.String()})
	req := authedRequest(t, http.MethodPost, "/cart/items", body, &auth.Claims{UserID: userID})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	mockService.AssertExpectations(t)
}

func TestCartHandler_AddItem_Unavailable(t *testing.T) {
	mockService := new(MockCartService)
	router := cartRouter(mockService)
	userID := uuid.Must(uuid.NewV4())
	menuItemID := uuid.Must(uuid.NewV4())

	mockService.On("Add", mock.Anything, userID, menuItemID).
		Return(nil, cart.ErrItemUnavailable).
		Once()

	body, _ := json.Marshal(handler.AddCartItemRequest{MenuItemID: menuItemID.String()})
	req := authedRequest(t, http.MethodPost, "/cart/items", body, &auth.Claims{UserID: userID})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartHandler_SetQuantity_Negative(t *testing.T) {
	mockService := new(MockCartService)
	router := cartRouter(mockService)
	userID := uuid.Must(uuid.NewV4())
	menuItemID := uuid.Must(uuid.NewV4())

	body, _ := json.Marshal(map[string]int{"quantity": -2})
	req := authedRequest(t, http.MethodPut, "/cart/items/"+menuItemID.String(), body, &auth.Claims{UserID: userID})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockService.AssertNotCalled(t, "SetQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCartHandler_Clear(t *testing.T) {
	mockService := new(MockCartService)
	router := cartRouter(mockService)
	userID := uuid.Must(uuid.NewV4())

	mockService.On("Clear", mock.Anything, userID).Return(nil).Once()

	req := authedRequest(t, http.MethodDelete, "/cart", nil, &auth.Claims{UserID: userID})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	mockService.AssertExpectations(t)
}

func TestCartHandler_RequiresAuthentication(t *testing.T) {
	router := cartRouter(new(MockCartService))

	req := authedRequest(t, http.MethodGet, "/cart", nil, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
