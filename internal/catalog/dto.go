package catalog

type ProductForm struct {
	Name          string  `json:"name" validate:"required"`
	SupplierPrice float64 `json:"supplier_price" validate:"gte=0"`
	ClientPrice   float64 `json:"client_price" validate:"gte=0"`
	Stock         int     `json:"stock" validate:"gte=0"`
	Category      string  `json:"category"`
	StoreID       string  `json:"store_id" validate:"required"`
}

type RestockForm struct {
	Units   int    `json:"units" validate:"required,gt=0"`
	ActorID string `json:"actor_id" validate:"required"`
}
