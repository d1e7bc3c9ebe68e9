package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	cartdomain "github.com/nijercart/storefront/internal/cart/domain"
	catalogrepo "github.com/nijercart/storefront/internal/catalog/repository"
	"github.com/nijercart/storefront/internal/checkout"
	"github.com/nijercart/storefront/internal/orders/domain"
	"github.com/nijercart/storefront/internal/pricing"
)

type CheckoutServiceMock struct {
	order *domain.Order
	err   error
}

func (m CheckoutServiceMock) Submit(ctx context.Context, req *checkout.SubmitRequest) (*domain.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.order, nil
}

type PromoApplierMock struct {
	promo *pricing.PromoCode
	err   error
}

func (m PromoApplierMock) ApplyPromo(ctx context.Context, code string) (*pricing.PromoCode, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.promo, nil
}

func TestSubmit_Success(t *testing.T) {
	order := &domain.Order{
		ID:          uuid.New(),
		OrderNumber: "NC-20260830-ABCD1234",
		UserID:      "user-1",
		TotalAmount: 1060,
		Currency:    "BDT",
		Status:      domain.OrderStatusPending,
	}

	handler := NewCheckoutHandler(CheckoutServiceMock{order: order}, 5*time.Second)
	body, _ := json.Marshal(checkout.SubmitRequest{
		IdempotencyKey: "key-1",
		Shipping:       checkout.ShippingInput{Name: "Rahim", Phone: "01712345678", Address: "House 7", City: "Dhaka"},
		PaymentMethod:  checkout.PaymentBkash,
		TransactionRef: "TXN123",
	})
	recorder := httptest.NewRecorder()

	handler.Submit(recorder, authedRequest("POST", "/checkout", body))

	if recorder.Code != http.StatusCreated {
		t.Fatalf("Expected status code %d, got %d", http.StatusCreated, recorder.Code)
	}

	var response domain.Order
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.OrderNumber != order.OrderNumber {
		t.Errorf("Expected order number '%s', got '%s'", order.OrderNumber, response.OrderNumber)
	}
}

func TestSubmit_Unauthorized(t *testing.T) {
	handler := NewCheckoutHandler(CheckoutServiceMock{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/checkout", nil)

	handler.Submit(recorder, request)

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("Expected status code %d, got %d", http.StatusUnauthorized, recorder.Code)
	}
}

func TestSubmit_ValidationFailure(t *testing.T) {
	mock := CheckoutServiceMock{err: &checkout.ValidationError{
		Fields: map[string]string{"phone": "must be a valid mobile number"},
	}}

	handler := NewCheckoutHandler(mock, 5*time.Second)
	body, _ := json.Marshal(checkout.SubmitRequest{})
	recorder := httptest.NewRecorder()

	handler.Submit(recorder, authedRequest("POST", "/checkout", body))

	if recorder.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected status code %d, got %d", http.StatusUnprocessableEntity, recorder.Code)
	}

	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Code != "validation_failed" {
		t.Errorf("Expected error code 'validation_failed', got '%s'", response.Code)
	}
	if response.Fields["phone"] == "" {
		t.Errorf("Expected field error for phone, got %+v", response.Fields)
	}
}

func TestSubmit_EmptyCart(t *testing.T) {
	handler := NewCheckoutHandler(CheckoutServiceMock{err: checkout.ErrEmptyCart}, 5*time.Second)

	body, _ := json.Marshal(checkout.SubmitRequest{})
	recorder := httptest.NewRecorder()

	handler.Submit(recorder, authedRequest("POST", "/checkout", body))

	if recorder.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status code %d, got %d", http.StatusUnprocessableEntity, recorder.Code)
	}

	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Code != "empty_cart" {
		t.Errorf("Expected error code 'empty_cart', got '%s'", response.Code)
	}
}

func TestSubmit_BuyNowOutOfStock(t *testing.T) {
	handler := NewCheckoutHandler(CheckoutServiceMock{err: cartdomain.ErrOutOfStock}, 5*time.Second)

	body, _ := json.Marshal(checkout.SubmitRequest{
		BuyNow: &checkout.BuyNowInput{BookID: "b1", Quantity: 1},
	})
	recorder := httptest.NewRecorder()

	handler.Submit(recorder, authedRequest("POST", "/checkout", body))

	if recorder.Code != http.StatusConflict {
		t.Fatalf("Expected status code %d, got %d", http.StatusConflict, recorder.Code)
	}

	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Code != "out_of_stock" {
		t.Errorf("Expected error code 'out_of_stock', got '%s'", response.Code)
	}
}

func TestSubmit_BuyNowUnknownBook(t *testing.T) {
	wrapped := fmt.Errorf("failed to look up book b9: %w", catalogrepo.ErrBookNotFound)
	handler := NewCheckoutHandler(CheckoutServiceMock{err: wrapped}, 5*time.Second)

	body, _ := json.Marshal(checkout.SubmitRequest{
		BuyNow: &checkout.BuyNowInput{BookID: "b9", Quantity: 1},
	})
	recorder := httptest.NewRecorder()

	handler.Submit(recorder, authedRequest("POST", "/checkout", body))

	if recorder.Code != http.StatusNotFound {
		t.Fatalf("Expected status code %d, got %d", http.StatusNotFound, recorder.Code)
	}

	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Code != "book_not_found" {
		t.Errorf("Expected error code 'book_not_found', got '%s'", response.Code)
	}
}

func TestSubmit_ExpiredPromo(t *testing.T) {
	handler := NewCheckoutHandler(CheckoutServiceMock{err: pricing.ErrPromoExpired}, 5*time.Second)

	body, _ := json.Marshal(checkout.SubmitRequest{PromoCode: "EXPIRED10"})
	recorder := httptest.NewRecorder()

	handler.Submit(recorder, authedRequest("POST", "/checkout", body))

	if recorder.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status code %d, got %d", http.StatusUnprocessableEntity, recorder.Code)
	}

	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Code != "promo_expired" {
		t.Errorf("Expected error code 'promo_expired', got '%s'", response.Code)
	}
}

func TestApplyPromo_Success(t *testing.T) {
	promo := &pricing.PromoCode{
		Code:          "SAVE10",
		DiscountType:  pricing.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(10),
		Status:        "active",
	}
	carts := CartServiceMock{cart: &cartdomain.Cart{
		UserID: "user-1",
		Lines: []cartdomain.Line{
			{BookID: "b1", UnitPrice: 600, Quantity: 2, StockQuantity: 5},
		},
	}}

	handler := NewPromoHandler(PromoApplierMock{promo: promo}, carts, 5*time.Second)
	body, _ := json.Marshal(ApplyPromoRequestDTO{Code: "SAVE10"})
	recorder := httptest.NewRecorder()

	handler.ApplyPromo(recorder, authedRequest("POST", "/promo/apply", body))

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response ApplyPromoResponse
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	// 1200 - 10% = 1080, free delivery above 1000.
	if response.Discount != 120 {
		t.Errorf("Expected discount 120, got %v", response.Discount)
	}
	if response.DeliveryCharge != 0 {
		t.Errorf("Expected free delivery, got %v", response.DeliveryCharge)
	}
	if response.Total != 1080 {
		t.Errorf("Expected total 1080, got %v", response.Total)
	}
}

func TestApplyPromo_NotFound(t *testing.T) {
	handler := NewPromoHandler(PromoApplierMock{err: pricing.ErrPromoNotFound}, CartServiceMock{}, 5*time.Second)

	body, _ := json.Marshal(ApplyPromoRequestDTO{Code: "NOPE"})
	recorder := httptest.NewRecorder()

	handler.ApplyPromo(recorder, authedRequest("POST", "/promo/apply", body))

	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected status code %d, got %d", http.StatusNotFound, recorder.Code)
	}
}
