package sales

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/bodega-pos/bodega-pos/internal/catalog"
)

// BasketLine is one resolved line of a composed basket: the product as it
// stands now, the unit count to deduct, and the line total.
type BasketLine struct {
	Product   catalog.Product
	Units     int
	LineTotal float64
	BatchID   string
}

// ComposeBasket validates the requested lines against the basket rules and
// prices them. lookup resolves product IDs to current catalog rows; stock is
// checked here for fast rejection but enforced again under row locks at
// commit time.
//
// Rules by basket type:
//   - unit: exactly one line, any positive quantity.
//   - fixedBasket: exactly one line, quantity counts whole baskets.
//   - mixedBasket: distinct products, each line positive, unit sum a
//     positive multiple of BasketSize.
//
// Fixed and mixed baskets share one batch id across their lines so the
// grouped transaction can be reassembled from the flat sale rows.
func ComposeBasket(input SubmitSaleInput, lookup func(productID string) (catalog.Product, bool)) ([]BasketLine, error) {
	if len(input.Lines) == 0 {
		return nil, fmt.Errorf("%w: no lines", ErrInvalidBasketComposition)
	}
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	switch input.BasketType {
	case BasketUnit, BasketFixed:
		if len(input.Lines) != 1 {
			return nil, fmt.Errorf("%w: %s sales take exactly one line", ErrInvalidBasketComposition, input.BasketType)
		}
	case BasketMixed:
		seen := make(map[string]bool, len(input.Lines))
		total := 0
		for _, line := range input.Lines {
			if seen[line.ProductID] {
				return nil, fmt.Errorf("%w: duplicate product %s", ErrInvalidBasketComposition, line.ProductID)
			}
			seen[line.ProductID] = true
			total += line.Quantity
		}
		if total%BasketSize != 0 {
			return nil, fmt.Errorf("%w: %d units is not a multiple of %d", ErrInvalidBasketComposition, total, BasketSize)
		}
	default:
		return nil, fmt.Errorf("%w: unknown basket type %q", ErrInvalidBasketComposition, input.BasketType)
	}

	batchID := ""
	if input.BasketType == BasketFixed || input.BasketType == BasketMixed {
		batchID = uuid.New().String()
	}

	lines := make([]BasketLine, 0, len(input.Lines))
	for _, line := range input.Lines {
		product, ok := lookup(line.ProductID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, line.ProductID)
		}
		units := line.Quantity
		if input.BasketType == BasketFixed {
			units = line.Quantity * BasketSize
		}
		if product.Stock < units {
			return nil, &StockShortfall{ProductID: product.ID, Requested: units, Available: product.Stock}
		}
		lines = append(lines, BasketLine{
			Product:   product,
			Units:     units,
			LineTotal: float64(units) * product.ClientPrice,
			BatchID:   batchID,
		})
	}
	return lines, nil
}

// BasketTotal sums the line totals.
func BasketTotal(lines []BasketLine) float64 {
	var total float64
	for _, line := range lines {
		total += line.LineTotal
	}
	return total
}
