package handler

import (
    "context"
    "encoding/json"
    "net/http"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/hall-occupancy/internal/model"
    "github.com/iliyamo/hall-occupancy/internal/repository"
)

type fakeHallStore struct {
    halls map[uint64]model.Hall
}

func (f *fakeHallStore) Create(_ context.Context, h *model.Hall) error {
    h.ID = uint64(len(f.halls) + 1)
    f.halls[h.ID] = *h
    return nil
}

func (f *fakeHallStore) GetByID(_ context.Context, id uint64) (model.Hall, error) {
    h, ok := f.halls[id]
    if !ok {
        return model.Hall{}, repository.ErrHallNotFound
    }
    return h, nil
}

func (f *fakeHallStore) List(_ context.Context) ([]model.Hall, error) {
    out := make([]model.Hall, 0, len(f.halls))
    for _, h := range f.halls {
        out = append(out, h)
    }
    return out, nil
}

func (f *fakeHallStore) UpdateLayout(_ context.Context, id uint64, rows, cols int) error {
    h, ok := f.halls[id]
    if !ok {
        return repository.ErrHallNotFound
    }
    h.LayoutRows, h.LayoutCols = rows, cols
    f.halls[id] = h
    return nil
}

type fakeSeatStore struct {
    seats map[string]model.Seat // single hall, keyed by label
}

func (f *fakeSeatStore) GetByHall(_ context.Context, _ uint64) ([]model.Seat, error) {
    out := make([]model.Seat, 0, len(f.seats))
    for _, s := range f.seats {
        out = append(out, s)
    }
    return out, nil
}

func (f *fakeSeatStore) SetActive(_ context.Context, _ uint64, label string, active bool) error {
    s, ok := f.seats[label]
    if !ok {
        return repository.ErrSeatNotFound
    }
    s.IsActive = active
    f.seats[label] = s
    return nil
}

func newHallServer(t *testing.T) (*echo.Echo, *fakeSeatStore) {
    t.Helper()
    halls := &fakeHallStore{halls: map[uint64]model.Hall{
        1: {ID: 1, Name: "Main Hall", LayoutRows: 2, LayoutCols: 2},
    }}
    seats := &fakeSeatStore{seats: map[string]model.Seat{
        "R1S1": {ID: 1, HallID: 1, Label: "R1S1", IsActive: true},
        "R1S2": {ID: 2, HallID: 1, Label: "R1S2", IsActive: true},
    }}
    h := NewHallHandler(halls, seats)
    e := echo.New()
    e.GET("/v1/halls/:id/seats", h.HallSeats)
    e.PUT("/v1/halls/:id/layout", h.UpdateLayout)
    e.PUT("/v1/halls/:id/seats/:label/active", h.SetSeatActive)
    return e, seats
}

func TestHallSeatsListing(t *testing.T) {
    e, _ := newHallServer(t)
    rec := doJSON(e, http.MethodGet, "/v1/halls/1/seats", "")
    require.Equal(t, http.StatusOK, rec.Code)

    var resp struct {
        Seats []model.Seat `json:"seats"`
    }
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
    assert.Len(t, resp.Seats, 2)
}

func TestSetSeatActive(t *testing.T) {
    e, seats := newHallServer(t)

    rec := doJSON(e, http.MethodPut, "/v1/halls/1/seats/R1S2/active", `{"active":false}`)
    require.Equal(t, http.StatusNoContent, rec.Code)
    assert.False(t, seats.seats["R1S2"].IsActive)

    rec = doJSON(e, http.MethodPut, "/v1/halls/1/seats/R1S2/active", `{"active":true}`)
    require.Equal(t, http.StatusNoContent, rec.Code)
    assert.True(t, seats.seats["R1S2"].IsActive)
}

func TestSetSeatActiveValidation(t *testing.T) {
    e, _ := newHallServer(t)

    rec := doJSON(e, http.MethodPut, "/v1/halls/1/seats/R9S9/active", `{"active":false}`)
    assert.Equal(t, http.StatusNotFound, rec.Code)

    rec = doJSON(e, http.MethodPut, "/v1/halls/1/seats/R1S1/active", `{}`)
    assert.Equal(t, http.StatusBadRequest, rec.Code)

    rec = doJSON(e, http.MethodPut, "/v1/halls/0/seats/R1S1/active", `{"active":false}`)
    assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateLayoutUnknownHall(t *testing.T) {
    e, _ := newHallServer(t)
    rec := doJSON(e, http.MethodPut, "/v1/halls/9/layout", `{"layout_rows":3,"layout_cols":4}`)
    assert.Equal(t, http.StatusNotFound, rec.Code)
}
