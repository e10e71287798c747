package handler

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/transitbook/bus-reservation/internal/middleware"
	"github.com/transitbook/bus-reservation/internal/model"
	"github.com/transitbook/bus-reservation/internal/reservation"
)

// Reservations is the slice of the coordinator the seat endpoints need.
type Reservations interface {
	Hold(ctx context.Context, seatID uint64, holderID string) (*model.Seat, time.Time, error)
	Release(ctx context.Context, seatID uint64, holderID string) error
	Purchase(ctx context.Context, seatIDs []uint64, holderID, email string) (*reservation.PurchaseResult, error)
}

// SeatHandler exposes the hold/release/purchase endpoints. The session
// middleware supplies the caller identity; every coordinator error maps
// onto the taxonomy the API promises: 409 for conflicts, 403 for
// ownership, 404 for unknown seats, 409 with the offending seat for an
// aborted purchase.
type SeatHandler struct {
	Reservations Reservations
}

// NewSeatHandler constructs a SeatHandler around the coordinator.
func NewSeatHandler(res Reservations) *SeatHandler {
	if res == nil {
		panic("nil coordinator passed to NewSeatHandler")
	}
	return &SeatHandler{Reservations: res}
}

// HoldSeat handles POST /v1/seats/hold. A successful hold returns the
// updated seat plus the hold's expiry timestamp so the client can run
// its own countdown mirroring the server-side TTL.
func (h *SeatHandler) HoldSeat(c echo.Context) error {
	holderID := middleware.HolderID(c)
	if holderID == "" {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "no session identity"})
	}
	var body struct {
		SeatID uint64 `json:"seat_id"`
	}
	if err := c.Bind(&body); err != nil || body.SeatID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_id is required"})
	}
	seat, expiresAt, err := h.Reservations.Hold(c.Request().Context(), body.SeatID, holderID)
	if err != nil {
		switch {
		case errors.Is(err, reservation.ErrSeatNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
		case errors.Is(err, reservation.ErrSeatUnavailable):
			return c.JSON(http.StatusConflict, echo.Map{"error": "seat is not available for hold"})
		case errors.Is(err, reservation.ErrSeatHeld):
			return c.JSON(http.StatusConflict, echo.Map{"error": "seat is already held by another user"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":    "seat held successfully",
		"seat":       seat,
		"expires_at": expiresAt.Format(time.RFC3339),
	})
}

// ReleaseSeat handles POST /v1/seats/release. Only the holder of the
// active hold may release it; anyone else gets a 403 and nothing
// changes.
func (h *SeatHandler) ReleaseSeat(c echo.Context) error {
	holderID := middleware.HolderID(c)
	if holderID == "" {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "no session identity"})
	}
	var body struct {
		SeatID uint64 `json:"seat_id"`
	}
	if err := c.Bind(&body); err != nil || body.SeatID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_id is required"})
	}
	if err := h.Reservations.Release(c.Request().Context(), body.SeatID, holderID); err != nil {
		switch {
		case errors.Is(err, reservation.ErrNotHolder):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "you do not have a hold on this seat"})
		case errors.Is(err, reservation.ErrSeatNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "seat released successfully"})
}

// PurchaseSeats handles POST /v1/seats/purchase. Either every requested
// seat transitions held -> sold or none do; on abort the response names
// the seat and condition that failed.
func (h *SeatHandler) PurchaseSeats(c echo.Context) error {
	holderID := middleware.HolderID(c)
	if holderID == "" {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "no session identity"})
	}
	var body struct {
		SeatIDs []uint64 `json:"seat_ids"`
		Email   string   `json:"email"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(body.SeatIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no seats selected for purchase"})
	}
	if _, err := mail.ParseAddress(body.Email); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "a valid email is required"})
	}
	res, err := h.Reservations.Purchase(c.Request().Context(), body.SeatIDs, holderID, body.Email)
	if err != nil {
		var pe *reservation.PurchaseError
		if errors.As(err, &pe) {
			return c.JSON(http.StatusConflict, echo.Map{
				"error":   "purchase failed",
				"seat_id": pe.SeatID,
				"reason":  pe.Reason,
			})
		}
		if errors.Is(err, reservation.ErrNoSeats) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no seats selected for purchase"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":      "purchase successful",
		"seat_numbers": res.SeatNumbers,
		"total_price":  res.TotalPrice,
	})
}
