package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/court-booking/internal/middleware"
	"github.com/iliyamo/court-booking/internal/model"
	"github.com/iliyamo/court-booking/internal/repository"
	"github.com/iliyamo/court-booking/internal/service"
)

type fakeService struct {
	createReq service.CreateBookingRequest
	seriesReq service.SeriesRequest
	booking   *model.Booking
	series    *service.SeriesResult
	err       error
	free      bool
	slots     []string
	listed    []model.Booking
	stats     *service.Statistics
}

func (f *fakeService) CreateBooking(_ context.Context, req service.CreateBookingRequest) (*model.Booking, error) {
	f.createReq = req
	return f.booking, f.err
}

func (f *fakeService) CreateSeriesBooking(_ context.Context, req service.SeriesRequest) (*service.SeriesResult, error) {
	f.seriesReq = req
	return f.series, f.err
}

func (f *fakeService) CancelBooking(_ context.Context, _, _ string) (*model.Booking, error) {
	return f.booking, f.err
}

func (f *fakeService) CheckAvailability(_ context.Context, _, _, _ string, _ int) (bool, error) {
	return f.free, f.err
}

func (f *fakeService) GetAvailableTimeSlots(_ context.Context, _, _ string) ([]string, error) {
	return f.slots, f.err
}

func (f *fakeService) ListBookingsByDate(_ context.Context, _, _ string) ([]model.Booking, error) {
	return f.listed, f.err
}

func (f *fakeService) ListUserBookings(_ context.Context, _, _ string) ([]model.Booking, error) {
	return f.listed, f.err
}

func (f *fakeService) Statistics(_ context.Context, _ service.StatisticsFilter) (*service.Statistics, error) {
	return f.stats, f.err
}

type grantSet map[string]bool

func (g grantSet) HasPermission(_ context.Context, userID, key string) bool {
	return g[userID+"/"+key]
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// newTestServer mounts the handler with the caller fixed to "u-1".
func newTestServer(svc *fakeService, perms grantSet) *echo.Echo {
	e := echo.New()
	e.Validator = NewRequestValidator()
	h := NewBookingHandler(svc, perms, quietLogger())
	as := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(middleware.CtxUserID, "u-1")
			return next(c)
		}
	}
	g := e.Group("/v1/bookings", as)
	g.POST("", h.Create)
	g.POST("/series", h.CreateSeries)
	g.DELETE("/:id", h.Cancel)
	g.GET("/availability/:court_id", h.Availability)
	g.GET("/available-slots/:court_id", h.AvailableSlots)
	g.GET("/date/:date", h.ByDate)
	g.GET("/user/:user_id", h.ByUser)
	g.GET("/statistics", h.Statistics)
	return e
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

const validBooking = `{"court_id":"A1","date":"2025-06-15","time":"13:00","duration":60,"booking_type":"private"}`

func TestCreateBooking(t *testing.T) {
	svc := &fakeService{booking: &model.Booking{ID: "b-1", CourtID: "A1", EndTime: "14:00", Price: 25, Status: model.StatusActive}}
	e := newTestServer(svc, nil)

	rec := do(e, http.MethodPost, "/v1/bookings", validBooking)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "b-1", decode(t, rec)["id"])
	assert.Equal(t, "u-1", svc.createReq.UserID)
	assert.Equal(t, model.TypePrivate, svc.createReq.Type)
}

func TestCreateBookingReportsMissingFields(t *testing.T) {
	e := newTestServer(&fakeService{}, nil)

	rec := do(e, http.MethodPost, "/v1/bookings", `{"court_id":"A1"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.ElementsMatch(t, []interface{}{"date", "time", "duration", "booking_type"}, decode(t, rec)["missing"])
}

func TestCreateBookingRejectsMalformedFields(t *testing.T) {
	e := newTestServer(&fakeService{}, nil)

	rec := do(e, http.MethodPost, "/v1/bookings",
		`{"court_id":"A1","date":"15.06.2025","time":"1pm","duration":60,"booking_type":"vip"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.ElementsMatch(t, []interface{}{"date", "time", "booking_type"}, decode(t, rec)["invalid"])

	rec = do(e, http.MethodPost, "/v1/bookings", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublicBookingNeedsPermission(t *testing.T) {
	svc := &fakeService{booking: &model.Booking{ID: "b-1"}}
	public := strings.Replace(validBooking, "private", "public", 1)

	rec := do(newTestServer(svc, grantSet{}), http.MethodPost, "/v1/bookings", public)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(newTestServer(svc, grantSet{"u-1/" + repository.PermCanBookPublic: true}), http.MethodPost, "/v1/bookings", public)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestServiceErrorsMapToStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{&service.ValidationError{Reason: "booking time is in the past or starts too soon"}, http.StatusBadRequest},
		{&service.ConflictError{Reason: "court is already booked at this time"}, http.StatusConflict},
		{&service.NotFoundError{Resource: "booking", ID: "x"}, http.StatusNotFound},
		{&service.StorageError{Op: "insert booking", Err: errors.New("boom")}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		e := newTestServer(&fakeService{err: tc.err}, nil)
		rec := do(e, http.MethodPost, "/v1/bookings", validBooking)
		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
	}
}

func TestStorageErrorDetailsAreHidden(t *testing.T) {
	e := newTestServer(&fakeService{err: &service.StorageError{Op: "insert", Err: errors.New("dial tcp 10.0.0.5:3306")}}, nil)
	rec := do(e, http.MethodDelete, "/v1/bookings/b-1", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
}

func TestCreateSeriesConflictListsFailures(t *testing.T) {
	svc := &fakeService{err: &service.ConflictError{
		Reason:   "no bookings possible: all dates are taken or unavailable",
		Failures: []service.WeekOutcome{{Week: 1, Date: "2025-06-15", Reason: "not available"}},
	}}
	e := newTestServer(svc, nil)

	rec := do(e, http.MethodPost, "/v1/bookings/series",
		`{"court_id":"A1","start_date":"2025-06-15","time":"13:00","duration":60,"booking_type":"private","week_count":4,"series_name":"League"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	failed, ok := decode(t, rec)["failed"].([]interface{})
	require.True(t, ok)
	assert.Len(t, failed, 1)
	assert.Equal(t, 4, svc.seriesReq.WeekCount)
	assert.Equal(t, "u-1", svc.seriesReq.UserID)
}

func TestAvailability(t *testing.T) {
	e := newTestServer(&fakeService{free: true}, nil)

	rec := do(e, http.MethodGet, "/v1/bookings/availability/A1?date=2025-06-15&time=13:00", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["available"])
	assert.Equal(t, float64(60), body["duration"])

	rec = do(e, http.MethodGet, "/v1/bookings/availability/A1?date=2025-06-15&time=13:00&duration=-5", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodGet, "/v1/bookings/availability/A1?date=2025-06-15", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAvailableSlots(t *testing.T) {
	e := newTestServer(&fakeService{slots: []string{"07:00", "08:00"}}, nil)
	rec := do(e, http.MethodGet, "/v1/bookings/available-slots/A1?date=2025-06-15", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{"07:00", "08:00"}, decode(t, rec)["available_slots"])
}

func TestByUserRestrictsOtherMembers(t *testing.T) {
	svc := &fakeService{listed: []model.Booking{{ID: "b-1"}}}

	rec := do(newTestServer(svc, nil), http.MethodGet, "/v1/bookings/user/u-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["count"])

	rec = do(newTestServer(svc, nil), http.MethodGet, "/v1/bookings/user/u-2", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := grantSet{"u-1/" + repository.PermCanViewStatistics: true}
	rec = do(newTestServer(svc, admin), http.MethodGet, "/v1/bookings/user/u-2", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatistics(t *testing.T) {
	svc := &fakeService{stats: &service.Statistics{TotalBookings: 4, PopularTimes: []service.PopularTime{}}}
	rec := do(newTestServer(svc, nil), http.MethodGet, "/v1/bookings/statistics?date_from=2025-06-01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	stats := body["statistics"].(map[string]interface{})
	assert.Equal(t, float64(4), stats["total_bookings"])
	assert.Equal(t, "2025-06-01", body["filters"].(map[string]interface{})["date_from"])
}

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	e := echo.New()
	e.GET("/ok", Health(pinger{}))
	e.GET("/down", Health(pinger{err: errors.New("refused")}))

	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/ok", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(e, http.MethodGet, "/down", "").Code)
}
