package sales

// SaleLineForm is one requested line in a sale submission.
type SaleLineForm struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

// SaleForm is the request payload for committing a transaction.
type SaleForm struct {
	StoreID         string         `json:"store_id" validate:"required"`
	ActorID         string         `json:"actor_id" validate:"required"`
	PaymentType     string         `json:"payment_type" validate:"omitempty,oneof=cash credit"`
	BasketType      string         `json:"basket_type" validate:"omitempty,oneof=unit fixedBasket mixedBasket"`
	Lines           []SaleLineForm `json:"lines" validate:"required,min=1,dive"`
	CustomerName    string         `json:"customer_name"`
	CustomerPhone   string         `json:"customer_phone"`
	CustomerAddress string         `json:"customer_address"`
}
