package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/kapehub/coffee-pricing-api/internal/core/ports"
)

// PriceHandler handles HTTP requests for the price-versioning workflow.
type PriceHandler struct {
	service ports.PriceService
}

func NewPriceHandler(service ports.PriceService) *PriceHandler {
	return &PriceHandler{service: service}
}

// Submit handles POST /v1/prices — records a new active price.
//
// @Summary      Record a new coffee price
// @Tags         prices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string              false  "Idempotency key to make retries safe"
// @Param        body             body      submitPriceRequest  true   "New price"
// @Success      201              {object}  submitPriceResponse
// @Success      200              {object}  submitPriceResponse "Replay of an earlier submission"
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      403              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Failure      500              {object}  errorResponse
// @Router       /v1/prices [post]
func (h *PriceHandler) Submit(c echo.Context) error {
	var req submitPriceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	adminID, err := ctxAdmin(c)
	if err != nil {
		return err
	}

	result, err := h.service.SubmitPrice(c.Request().Context(), ports.SubmitPriceInput{
		CoffeeType:     req.CoffeeType,
		PricePerKg:     decimal.NewFromFloat(*req.PricePerKg),
		Currency:       req.Currency,
		AdminID:        adminID,
		IdempotencyKey: c.Request().Header.Get("Idempotency-Key"),
	})
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if result.AlreadyExisted {
		status = http.StatusOK
	}

	rec := result.Record
	return c.JSON(status, submitPriceResponse{
		Price: priceRecordResponse{
			ID:         rec.ID,
			CoffeeType: string(rec.CoffeeType),
			PricePerKg: rec.PricePerKg,
			Currency:   rec.Currency,
			IsActive:   rec.IsActive,
			CreatedBy:  rec.CreatedBy,
			UpdatedAt:  rec.UpdatedAt,
		},
		AlreadyExisted: result.AlreadyExisted,
	})
}

// ListActive handles GET /v1/prices — the current active price per coffee type.
//
// @Summary      List active prices
// @Tags         prices
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listActivePricesResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/prices [get]
func (h *PriceHandler) ListActive(c echo.Context) error {
	views, err := h.service.ListActivePrices(c.Request().Context())
	if err != nil {
		return err
	}

	data := make([]activePriceResponse, 0, len(views))
	for _, v := range views {
		data = append(data, activePriceResponse{
			ID:            v.ID,
			CoffeeType:    string(v.CoffeeType),
			PricePerKg:    v.PricePerKg,
			Currency:      v.Currency,
			CreatedBy:     v.CreatedBy,
			CreatedByName: v.CreatedByName,
			UpdatedAt:     v.UpdatedAt,
		})
	}
	return c.JSON(http.StatusOK, listActivePricesResponse{Data: data})
}

// History handles GET /v1/prices/history — the full audit trail, newest first.
//
// @Summary      List the price change history
// @Tags         prices
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listPriceHistoryResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/prices/history [get]
func (h *PriceHandler) History(c echo.Context) error {
	views, err := h.service.ListPriceHistory(c.Request().Context())
	if err != nil {
		return err
	}

	data := make([]priceHistoryResponse, 0, len(views))
	for _, v := range views {
		data = append(data, priceHistoryResponse{
			ID:            v.ID,
			PriceID:       v.PriceID,
			CoffeeType:    string(v.CoffeeType),
			OldPrice:      v.OldPrice,
			NewPrice:      v.NewPrice,
			ChangedBy:     v.ChangedBy,
			ChangedByName: v.ChangedByName,
			ChangeDate:    v.ChangeDate,
			Reason:        v.Reason,
		})
	}
	return c.JSON(http.StatusOK, listPriceHistoryResponse{Data: data})
}
