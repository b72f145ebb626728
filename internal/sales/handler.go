package sales

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bodega-pos/bodega-pos/internal/platform/httpx"
)

// Handler wires HTTP endpoints for sale transactions.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers sales routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.submit)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	storeID := r.URL.Query().Get("store_id")
	if storeID == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "store_id query parameter is required")
		return
	}
	sales, err := h.service.List(r.Context(), storeID)
	if err != nil {
		h.logger.Error("list sales", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"sales": sales})
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var form SaleForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	lines := make([]LineInput, 0, len(form.Lines))
	for _, line := range form.Lines {
		lines = append(lines, LineInput{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	receipt, err := h.service.SubmitSale(r.Context(), SubmitSaleInput{
		StoreID:     form.StoreID,
		ActorID:     form.ActorID,
		PaymentType: PaymentType(form.PaymentType),
		BasketType:  BasketType(form.BasketType),
		Lines:       lines,
		Customer: CustomerInfo{
			Name:    form.CustomerName,
			Phone:   form.CustomerPhone,
			Address: form.CustomerAddress,
		},
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, receipt)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrProductNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInsufficientStock):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrInvalidBasketComposition),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrCustomerRequired):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unprocessable", err.Error())
	case errors.Is(err, ErrBasketNotAllowed), errors.Is(err, ErrCreditNotAllowed):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unprocessable", err.Error())
	default:
		h.logger.Error("sale submission failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
