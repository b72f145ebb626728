package sales

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bodega-pos/bodega-pos/internal/catalog"
	"github.com/bodega-pos/bodega-pos/internal/credit"
	"github.com/bodega-pos/bodega-pos/internal/shared"
)

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// CacheBumper invalidates the catalog listing cache after stock moves.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// StorePolicy gates which sale shapes a store accepts.
type StorePolicy struct {
	AllowBaskets bool
	AllowCredit  bool
}

// DefaultPolicies mirrors the house rules: beverages move by basket but
// never on credit, furniture moves on credit but never by basket, clothing
// takes neither.
func DefaultPolicies() map[string]StorePolicy {
	return map[string]StorePolicy{
		"cerveza": {AllowBaskets: true, AllowCredit: false},
		"ropa":    {AllowBaskets: false, AllowCredit: false},
		"muebles": {AllowBaskets: false, AllowCredit: true},
	}
}

// ServiceConfig tunes the sale recorder.
type ServiceConfig struct {
	// Policies maps store IDs to their sale-shape rules. Stores absent from
	// the map accept every shape.
	Policies map[string]StorePolicy
	// CreditInstallments overrides the plan length; 0 keeps the default.
	CreditInstallments int
	// CreditFirstPaymentIn overrides the first due date offset; 0 keeps the
	// default.
	CreditFirstPaymentIn time.Duration
}

// SaleReceipt is the result of a committed transaction.
type SaleReceipt struct {
	Sales      []Sale       `json:"sales"`
	CreditPlan *credit.Plan `json:"credit_plan,omitempty"`
	Total      float64      `json:"total"`
}

// Service records sale transactions: it composes baskets, deducts stock and
// writes sale rows atomically, and schedules credit plans.
type Service struct {
	repo   RepositoryPort
	locks  *shared.StoreLocks
	audit  AuditPort
	cache  CacheBumper
	logger *slog.Logger
	cfg    ServiceConfig
}

// NewService builds Service.
func NewService(repo RepositoryPort, locks *shared.StoreLocks, audit AuditPort, cache CacheBumper, logger *slog.Logger, cfg ServiceConfig) *Service {
	return &Service{repo: repo, locks: locks, audit: audit, cache: cache, logger: logger, cfg: cfg}
}

// List returns the store's sales.
func (s *Service) List(ctx context.Context, storeID string) ([]Sale, error) {
	return s.repo.ListByStore(ctx, storeID)
}

// SubmitSale commits one transaction. Either every line's stock deduction,
// every sale row and the credit plan (when deferred) land together, or
// nothing does.
func (s *Service) SubmitSale(ctx context.Context, input SubmitSaleInput) (SaleReceipt, error) {
	if input.BasketType == "" {
		input.BasketType = BasketUnit
	}
	if input.PaymentType == "" {
		input.PaymentType = PaymentCash
	}
	if input.Now.IsZero() {
		input.Now = time.Now().UTC()
	}

	if err := s.checkPolicy(input); err != nil {
		return SaleReceipt{}, err
	}
	if input.PaymentType == PaymentCredit && input.Customer.Name == "" {
		return SaleReceipt{}, ErrCustomerRequired
	}

	// Pre-flight composition against a snapshot of the catalog. Fails fast
	// on bad shapes before any lock is taken.
	snapshot := make(map[string]catalog.Product, len(input.Lines))
	for _, line := range input.Lines {
		if line.ProductID == "" || snapshot[line.ProductID].ID != "" {
			continue
		}
		product, err := s.repo.GetProduct(ctx, input.StoreID, line.ProductID)
		if err != nil {
			return SaleReceipt{}, err
		}
		snapshot[product.ID] = product
	}
	lines, err := ComposeBasket(input, func(id string) (catalog.Product, bool) {
		p, ok := snapshot[id]
		return p, ok
	})
	if err != nil {
		return SaleReceipt{}, err
	}

	unlock := s.locks.Lock(input.StoreID)
	defer unlock()

	receipt, err := s.commit(ctx, input, lines)
	if err != nil {
		return SaleReceipt{}, err
	}

	s.afterCommit(ctx, input, receipt)
	return receipt, nil
}

func (s *Service) checkPolicy(input SubmitSaleInput) error {
	policy, ok := s.cfg.Policies[input.StoreID]
	if !ok {
		return nil
	}
	if input.BasketType != BasketUnit && !policy.AllowBaskets {
		return ErrBasketNotAllowed
	}
	if input.PaymentType == PaymentCredit && !policy.AllowCredit {
		return ErrCreditNotAllowed
	}
	return nil
}

// commit runs the all-or-nothing write. Product rows are locked in sorted ID
// order so two overlapping mixed baskets cannot deadlock, then stock is
// re-verified against the locked rows before deduction.
func (s *Service) commit(ctx context.Context, input SubmitSaleInput, lines []BasketLine) (SaleReceipt, error) {
	ordered := make([]BasketLine, len(lines))
	copy(ordered, lines)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Product.ID < ordered[j].Product.ID
	})

	var receipt SaleReceipt
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		receipt = SaleReceipt{}

		sales := make([]Sale, 0, len(ordered))
		for _, line := range ordered {
			current, err := tx.GetProductForUpdate(ctx, line.Product.ID)
			if err != nil {
				return err
			}
			if current.Stock < line.Units {
				return &StockShortfall{ProductID: current.ID, Requested: line.Units, Available: current.Stock}
			}
			if err := tx.UpdateProductStock(ctx, current.ID, current.Stock-line.Units); err != nil {
				return err
			}
			sales = append(sales, Sale{
				ID:            uuid.New().String(),
				ProductID:     current.ID,
				ProductName:   current.Name,
				Quantity:      line.Units,
				UnitPrice:     current.ClientPrice,
				Total:         float64(line.Units) * current.ClientPrice,
				CustomerName:  input.Customer.Name,
				CustomerPhone: input.Customer.Phone,
				PaymentType:   input.PaymentType,
				BasketType:    input.BasketType,
				BatchID:       line.BatchID,
				StoreID:       input.StoreID,
				EmployeeID:    input.ActorID,
				CreatedAt:     input.Now,
			})
		}

		var total float64
		for _, sale := range sales {
			if err := tx.InsertSale(ctx, sale); err != nil {
				return err
			}
			total += sale.Total
		}

		receipt.Sales = sales
		receipt.Total = total

		if input.PaymentType == PaymentCredit {
			plan, err := credit.Schedule(credit.ScheduleInput{
				Total:           total,
				Installments:    s.cfg.CreditInstallments,
				FirstPaymentIn:  s.cfg.CreditFirstPaymentIn,
				CustomerName:    input.Customer.Name,
				CustomerPhone:   input.Customer.Phone,
				CustomerAddress: input.Customer.Address,
				ProductName:     joinProductNames(sales),
				StoreID:         input.StoreID,
				Now:             input.Now,
			})
			if err != nil {
				return err
			}
			if err := tx.InsertCreditPlan(ctx, plan); err != nil {
				return err
			}
			receipt.CreditPlan = &plan
		}
		return nil
	})
	if err != nil {
		return SaleReceipt{}, err
	}
	return receipt, nil
}

func (s *Service) afterCommit(ctx context.Context, input SubmitSaleInput, receipt SaleReceipt) {
	if s.cache != nil {
		if err := s.cache.Bump(ctx); err != nil && s.logger != nil {
			s.logger.Warn("catalog cache bump failed", slog.Any("error", err))
		}
	}
	if s.audit == nil {
		return
	}
	meta := map[string]any{
		"basket_type":  string(input.BasketType),
		"payment_type": string(input.PaymentType),
		"lines":        len(receipt.Sales),
		"total":        receipt.Total,
	}
	entityID := ""
	if len(receipt.Sales) > 0 {
		entityID = receipt.Sales[0].ID
		if receipt.Sales[0].BatchID != "" {
			entityID = receipt.Sales[0].BatchID
		}
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  input.ActorID,
		StoreID:  input.StoreID,
		Action:   "sales:commit",
		Entity:   "sale",
		EntityID: entityID,
		Meta:     meta,
		At:       input.Now,
	}); err != nil && s.logger != nil {
		s.logger.Warn("audit record failed", slog.Any("error", err))
	}
}

func joinProductNames(sales []Sale) string {
	names := make([]string, 0, len(sales))
	for _, sale := range sales {
		names = append(names, sale.ProductName)
	}
	return strings.Join(names, ", ")
}
