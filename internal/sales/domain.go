package sales

import (
	"errors"
	"fmt"
	"time"
)

// BasketSize is the unit count of one full basket. Mixed baskets must total
// an exact multiple of it.
const BasketSize = 30

// PaymentType enumerates how a sale is settled.
type PaymentType string

const (
	// PaymentCash settles at the counter.
	PaymentCash PaymentType = "cash"
	// PaymentCredit defers settlement through an installment plan.
	PaymentCredit PaymentType = "credit"
)

// BasketType enumerates how quantities in a sale are grouped.
type BasketType string

const (
	// BasketUnit sells loose units of one product.
	BasketUnit BasketType = "unit"
	// BasketFixed sells whole baskets of one product.
	BasketFixed BasketType = "fixedBasket"
	// BasketMixed combines several products into whole baskets.
	BasketMixed BasketType = "mixedBasket"
)

// Sale is one committed line of a transaction. Product name and price are
// snapshotted at commit time so later catalog edits do not rewrite history.
type Sale struct {
	ID            string      `json:"id"`
	ProductID     string      `json:"product_id"`
	ProductName   string      `json:"product_name"`
	Quantity      int         `json:"quantity"`
	UnitPrice     float64     `json:"unit_price"`
	Total         float64     `json:"total"`
	CustomerName  string      `json:"customer_name,omitempty"`
	CustomerPhone string      `json:"customer_phone,omitempty"`
	PaymentType   PaymentType `json:"payment_type"`
	BasketType    BasketType  `json:"basket_type"`
	BatchID       string      `json:"batch_id,omitempty"`
	StoreID       string      `json:"store_id"`
	EmployeeID    string      `json:"employee_id"`
	CreatedAt     time.Time   `json:"created_at"`
}

// LineInput is one requested product line. For fixed baskets Quantity counts
// baskets; otherwise it counts units.
type LineInput struct {
	ProductID string
	Quantity  int
}

// CustomerInfo identifies the buyer on a credit sale.
type CustomerInfo struct {
	Name    string
	Phone   string
	Address string
}

// SubmitSaleInput is the full request for one transaction.
type SubmitSaleInput struct {
	StoreID     string
	ActorID     string
	PaymentType PaymentType
	BasketType  BasketType
	Lines       []LineInput
	Customer    CustomerInfo
	Now         time.Time
}

var (
	// ErrProductNotFound indicates a line referenced an unknown product.
	ErrProductNotFound = errors.New("sales: product not found")
	// ErrInsufficientStock indicates a line exceeded available stock.
	ErrInsufficientStock = errors.New("sales: insufficient stock")
	// ErrInvalidBasketComposition indicates the lines do not form a valid basket.
	ErrInvalidBasketComposition = errors.New("sales: invalid basket composition")
	// ErrInvalidQuantity indicates a non-positive line quantity.
	ErrInvalidQuantity = errors.New("sales: quantity must be positive")
	// ErrCreditNotAllowed indicates the store does not sell on credit.
	ErrCreditNotAllowed = errors.New("sales: credit sales not allowed for store")
	// ErrBasketNotAllowed indicates the store does not sell by basket.
	ErrBasketNotAllowed = errors.New("sales: basket sales not allowed for store")
	// ErrCustomerRequired indicates a credit sale without customer details.
	ErrCustomerRequired = errors.New("sales: credit sales require customer name")
)

// StockShortfall carries the offending product when stock runs out.
type StockShortfall struct {
	ProductID string
	Requested int
	Available int
}

func (e *StockShortfall) Error() string {
	return fmt.Sprintf("sales: insufficient stock for %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// Unwrap lets callers match with errors.Is(err, ErrInsufficientStock).
func (e *StockShortfall) Unwrap() error {
	return ErrInsufficientStock
}
