package handler

import (
	"github.com/shopspring/decimal"

	"github.com/quickorder/storefront/internal/core/domain"
)

// --- auth ---

type registerRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"max=120"`
}

type loginRequest struct {
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone"`
	Password   string `json:"password" validate:"required"`
	TargetRole string `json:"target_role" validate:"omitempty,oneof=admin customer"`
}

type authResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expires_at"`
	User      *domain.User `json:"user"`
}

// --- stores ---

type createStoreRequest struct {
	Slug         string `json:"store_id" validate:"required,max=64"`
	Name         string `json:"name" validate:"required,max=120"`
	OwnerEmail   string `json:"owner_email" validate:"omitempty,email"`
	OwnerPhone   string `json:"owner_phone"`
	VPA          string `json:"vpa"`
	MerchantName string `json:"merchant_name"`
}

// updateStoreRequest carries only the fields the caller wants to change.
type updateStoreRequest struct {
	Name         *string `json:"name" validate:"omitempty,max=120"`
	OwnerEmail   *string `json:"owner_email" validate:"omitempty,email"`
	OwnerPhone   *string `json:"owner_phone"`
	VPA          *string `json:"vpa"`
	MerchantName *string `json:"merchant_name"`
}

func (r updateStoreRequest) settings() domain.StoreSettings {
	return domain.StoreSettings{
		Name:         r.Name,
		OwnerEmail:   r.OwnerEmail,
		OwnerPhone:   r.OwnerPhone,
		VPA:          r.VPA,
		MerchantName: r.MerchantName,
	}
}

// --- products ---

type productRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Price       decimal.Decimal `json:"price"`
	Unit        string          `json:"unit" validate:"max=40"`
	Description string          `json:"description" validate:"max=2000"`
	ImageURL    string          `json:"image_url" validate:"omitempty,url"`
}

// --- orders ---

// customerRequest is checked by domain.Customer.Validate.
type customerRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Contact string `json:"contact"`
}

type orderItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
}

type placeOrderRequest struct {
	Customer customerRequest    `json:"customer"`
	Items    []orderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type updateStatusRequest struct {
	Status         string `json:"status" validate:"required,oneof=pending paid confirmed shipped delivered cancelled"`
	TrackingNumber string `json:"tracking_number" validate:"max=64"`
}

type orderResponse struct {
	*domain.Order
	PaymentURL string `json:"payment_url,omitempty"`
}

type orderBoardResponse struct {
	Active    []*domain.Order `json:"active"`
	Completed []*domain.Order `json:"completed"`
}

// --- navigation ---

type navigationResponse struct {
	View    string        `json:"view"`
	Store   *domain.Store `json:"store,omitempty"`
	Message string        `json:"message,omitempty"`
}
