package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/transitbook/bus-reservation/internal/model"
	"github.com/transitbook/bus-reservation/internal/repository"
)

// TripHandler serves the browse endpoints: trip summaries and the full
// seat map of a single trip. Both are read-only; seat mutations go
// through the SeatHandler and the reservation coordinator.
type TripHandler struct {
	TripRepo *repository.TripRepo
	SeatRepo *repository.SeatRepo
}

// NewTripHandler constructs a TripHandler. Both repositories are required.
func NewTripHandler(tripRepo *repository.TripRepo, seatRepo *repository.SeatRepo) *TripHandler {
	if tripRepo == nil || seatRepo == nil {
		panic("nil repository passed to NewTripHandler")
	}
	return &TripHandler{TripRepo: tripRepo, SeatRepo: seatRepo}
}

// ListTrips handles GET /v1/trips. It returns summary metadata for all
// trips without their seats.
func (h *TripHandler) ListTrips(c echo.Context) error {
	trips, err := h.TripRepo.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load trips"})
	}
	if trips == nil {
		trips = []model.Trip{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": trips})
}

// GetTrip handles GET /v1/trips/:id. It returns the trip plus all its
// seats ordered by seat id ascending, the order clients render the seat
// map in.
func (h *TripHandler) GetTrip(c echo.Context) error {
	tripID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || tripID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
	}
	ctx := c.Request().Context()
	trip, err := h.TripRepo.GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, repository.ErrTripNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "trip not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load trip"})
	}
	seats, err := h.SeatRepo.ListByTrip(ctx, tripID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load seats"})
	}
	trip.Seats = seats
	return c.JSON(http.StatusOK, trip)
}
