package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitbook/bus-reservation/internal/model"
	"github.com/transitbook/bus-reservation/internal/reservation"
)

// stubReservations scripts the coordinator's answers so the tests can
// pin down the handler's status-code mapping in isolation.
type stubReservations struct {
	holdSeat    *model.Seat
	holdErr     error
	releaseErr  error
	purchaseRes *reservation.PurchaseResult
	purchaseErr error

	lastHolder  string
	lastSeatIDs []uint64
}

func (s *stubReservations) Hold(_ context.Context, _ uint64, holderID string) (*model.Seat, time.Time, error) {
	s.lastHolder = holderID
	return s.holdSeat, time.Now().Add(20 * time.Second), s.holdErr
}

func (s *stubReservations) Release(_ context.Context, _ uint64, holderID string) error {
	s.lastHolder = holderID
	return s.releaseErr
}

func (s *stubReservations) Purchase(_ context.Context, seatIDs []uint64, holderID, _ string) (*reservation.PurchaseResult, error) {
	s.lastHolder = holderID
	s.lastSeatIDs = seatIDs
	return s.purchaseRes, s.purchaseErr
}

// do routes one JSON request through the given handler with a session
// identity already attached, the way the session middleware would.
func do(t *testing.T, h echo.HandlerFunc, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("holder_id", "holder-1")
	require.NoError(t, h(c))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestHoldSeatSuccess(t *testing.T) {
	stub := &stubReservations{holdSeat: &model.Seat{
		ID: 3, TripID: 1, SeatNumber: "A3", Status: model.StatusHeld, Price: 650,
	}}
	h := NewSeatHandler(stub)

	rec, resp := do(t, h.HoldSeat, `{"seat_id":3}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "holder-1", stub.lastHolder)
	assert.NotEmpty(t, resp["expires_at"])

	seat := resp["seat"].(map[string]any)
	assert.Equal(t, "A3", seat["seatNumber"])
	assert.Equal(t, "held", seat["status"])
}

func TestHoldSeatErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"not found", reservation.ErrSeatNotFound, http.StatusNotFound},
		{"unavailable", reservation.ErrSeatUnavailable, http.StatusConflict},
		{"held by other", reservation.ErrSeatHeld, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewSeatHandler(&stubReservations{holdErr: tc.err})
			rec, resp := do(t, h.HoldSeat, `{"seat_id":3}`)
			assert.Equal(t, tc.code, rec.Code)
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestHoldSeatMissingID(t *testing.T) {
	h := NewSeatHandler(&stubReservations{})
	rec, _ := do(t, h.HoldSeat, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReleaseSeatNotHolder(t *testing.T) {
	h := NewSeatHandler(&stubReservations{releaseErr: reservation.ErrNotHolder})
	rec, resp := do(t, h.ReleaseSeat, `{"seat_id":3}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "you do not have a hold on this seat", resp["error"])
}

func TestReleaseSeatSuccess(t *testing.T) {
	h := NewSeatHandler(&stubReservations{})
	rec, _ := do(t, h.ReleaseSeat, `{"seat_id":3}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPurchaseSeatsSuccess(t *testing.T) {
	stub := &stubReservations{purchaseRes: &reservation.PurchaseResult{
		SeatNumbers: []string{"A1", "A2"},
		TotalPrice:  1300,
	}}
	h := NewSeatHandler(stub)

	rec, resp := do(t, h.PurchaseSeats, `{"seat_ids":[1,2],"email":"x@y.com"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []uint64{1, 2}, stub.lastSeatIDs)
	assert.Equal(t, 1300.0, resp["total_price"])
	assert.Equal(t, []any{"A1", "A2"}, resp["seat_numbers"])
}

func TestPurchaseSeatsAbortNamesSeat(t *testing.T) {
	h := NewSeatHandler(&stubReservations{
		purchaseErr: &reservation.PurchaseError{SeatID: 2, Reason: reservation.ReasonNoHold},
	})
	rec, resp := do(t, h.PurchaseSeats, `{"seat_ids":[1,2],"email":"x@y.com"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, float64(2), resp["seat_id"])
	assert.Equal(t, reservation.ReasonNoHold, resp["reason"])
}

func TestPurchaseSeatsValidation(t *testing.T) {
	h := NewSeatHandler(&stubReservations{})

	rec, _ := do(t, h.PurchaseSeats, `{"seat_ids":[],"email":"x@y.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h.PurchaseSeats, `{"seat_ids":[1],"email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSeatEndpointsRequireIdentity(t *testing.T) {
	h := NewSeatHandler(&stubReservations{})
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"seat_id":3}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec) // no holder_id set

	require.NoError(t, h.HoldSeat(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
