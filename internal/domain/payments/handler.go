package payments

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/diagnostic-center/dcms/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/payments/allocate", h.Allocate)
	api.GET("/payments/due", h.Due)
	api.GET("/payments/ledger", h.Balance)
	api.GET("/payments/ledger/entries", h.ListLedger)
}

func (h *Handler) Allocate(c echo.Context) error {
	var req AllocationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	res, err := h.svc.Allocate(c.Request().Context(), &req)
	if err != nil {
		var exceeds *ExceedsOutstandingError
		switch {
		case errors.Is(err, ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrNoOrders):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.As(err, &exceeds):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, echo.Map{
				"message":     exceeds.Error(),
				"outstanding": exceeds.Outstanding,
			})
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) Due(c echo.Context) error {
	payeeID, kind, err := payeeParams(c)
	if err != nil {
		return err
	}
	res, err := h.svc.Due(c.Request().Context(), payeeID, kind,
		PeriodFilter(c.QueryParam("period")), c.QueryParam("custom_start"), c.QueryParam("custom_end"))
	if err != nil {
		if errors.Is(err, ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) Balance(c echo.Context) error {
	payeeID, kind, err := payeeParams(c)
	if err != nil {
		return err
	}
	entry, err := h.svc.Balance(c.Request().Context(), payeeID, kind,
		PeriodFilter(c.QueryParam("period")), c.QueryParam("custom_start"), c.QueryParam("custom_end"))
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrNoLedgerEntry):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, entry)
}

func (h *Handler) ListLedger(c echo.Context) error {
	pg := pagination.FromContext(c)
	var payeeID uuid.UUID
	if v := c.QueryParam("payee_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid payee_id")
		}
		payeeID = id
	}
	items, total, err := h.svc.ListLedger(c.Request().Context(), payeeID,
		PayeeKind(c.QueryParam("payee_kind")), pg.Limit, pg.Offset)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func payeeParams(c echo.Context) (uuid.UUID, PayeeKind, error) {
	payeeID, err := uuid.Parse(c.QueryParam("payee_id"))
	if err != nil {
		return uuid.Nil, "", echo.NewHTTPError(http.StatusBadRequest, "invalid payee_id")
	}
	return payeeID, PayeeKind(c.QueryParam("payee_kind")), nil
}
