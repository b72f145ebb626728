package credit

// PlanForm is the request payload for manually creating a plan.
type PlanForm struct {
	CustomerName    string  `json:"customer_name" validate:"required"`
	CustomerPhone   string  `json:"customer_phone"`
	CustomerAddress string  `json:"customer_address"`
	ProductName     string  `json:"product_name" validate:"required"`
	TotalAmount     float64 `json:"total_amount" validate:"gt=0"`
	Installments    int     `json:"installments" validate:"gte=0"`
	StoreID         string  `json:"store_id" validate:"required"`
}

// PaymentForm is the request payload for registering an installment payment.
type PaymentForm struct {
	Amount float64 `json:"amount" validate:"gt=0"`
}
