package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/court-booking/internal/middleware"
	"github.com/iliyamo/court-booking/internal/model"
	"github.com/iliyamo/court-booking/internal/repository"
	"github.com/iliyamo/court-booking/internal/service"
)

// BookingService is the subset of *service.BookingService the handlers use.
type BookingService interface {
	CreateBooking(ctx context.Context, req service.CreateBookingRequest) (*model.Booking, error)
	CreateSeriesBooking(ctx context.Context, req service.SeriesRequest) (*service.SeriesResult, error)
	CancelBooking(ctx context.Context, bookingID, userID string) (*model.Booking, error)
	CheckAvailability(ctx context.Context, courtID, date, clock string, duration int) (bool, error)
	GetAvailableTimeSlots(ctx context.Context, courtID, date string) ([]string, error)
	ListBookingsByDate(ctx context.Context, date, clubID string) ([]model.Booking, error)
	ListUserBookings(ctx context.Context, userID, fromDate string) ([]model.Booking, error)
	Statistics(ctx context.Context, f service.StatisticsFilter) (*service.Statistics, error)
}

// BookingHandler serves /v1/bookings.  Authentication and the base
// can_book permission are enforced by middleware; the handler adds the
// checks that depend on the request itself, such as can_book_public for
// public bookings.
type BookingHandler struct {
	svc   BookingService
	perms middleware.PermissionChecker
	log   *logrus.Logger
}

// NewBookingHandler panics on nil dependencies.
func NewBookingHandler(svc BookingService, perms middleware.PermissionChecker, log *logrus.Logger) *BookingHandler {
	if svc == nil || perms == nil || log == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{svc: svc, perms: perms, log: log}
}

type createBookingBody struct {
	CourtID     string `json:"court_id" validate:"required"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string `json:"time" validate:"required,clock"`
	Duration    int    `json:"duration" validate:"required,min=1,max=720"`
	BookingType string `json:"booking_type" validate:"required,oneof=private public"`
	Notes       string `json:"notes" validate:"max=500"`
}

type seriesBody struct {
	CourtID     string `json:"court_id" validate:"required"`
	StartDate   string `json:"start_date" validate:"required,datetime=2006-01-02"`
	Time        string `json:"time" validate:"required,clock"`
	Duration    int    `json:"duration" validate:"required,min=1,max=720"`
	BookingType string `json:"booking_type" validate:"required,oneof=private public"`
	WeekCount   int    `json:"week_count" validate:"required,min=1,max=52"`
	SeriesName  string `json:"series_name" validate:"required,max=100"`
	Notes       string `json:"notes" validate:"max=500"`
}

// bind decodes and validates the body in one step.
func bind(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return err
	}
	return c.Validate(dst)
}

// mayBookType enforces can_book_public for public bookings.
func (h *BookingHandler) mayBookType(c echo.Context, uid string, t model.BookingType) bool {
	return t != model.TypePublic || h.perms.HasPermission(c.Request().Context(), uid, repository.PermCanBookPublic)
}

// Create handles POST /v1/bookings.
func (h *BookingHandler) Create(c echo.Context) error {
	uid := middleware.UserID(c)
	var body createBookingBody
	if err := bind(c, &body); err != nil {
		return bindError(c, err)
	}
	typ := model.BookingType(body.BookingType)
	if !h.mayBookType(c, uid, typ) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "public bookings require the can_book_public permission"})
	}
	b, err := h.svc.CreateBooking(c.Request().Context(), service.CreateBookingRequest{
		CourtID:  body.CourtID,
		Date:     body.Date,
		Time:     body.Time,
		Duration: body.Duration,
		Type:     typ,
		UserID:   uid,
		Notes:    body.Notes,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// CreateSeries handles POST /v1/bookings/series.  Partial success is still
// 201; the body lists created and failed weeks.
func (h *BookingHandler) CreateSeries(c echo.Context) error {
	uid := middleware.UserID(c)
	var body seriesBody
	if err := bind(c, &body); err != nil {
		return bindError(c, err)
	}
	typ := model.BookingType(body.BookingType)
	if !h.mayBookType(c, uid, typ) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "public bookings require the can_book_public permission"})
	}
	res, err := h.svc.CreateSeriesBooking(c.Request().Context(), service.SeriesRequest{
		CourtID:    body.CourtID,
		StartDate:  body.StartDate,
		Time:       body.Time,
		Duration:   body.Duration,
		Type:       typ,
		WeekCount:  body.WeekCount,
		SeriesName: body.SeriesName,
		Notes:      body.Notes,
		UserID:     uid,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// Cancel handles DELETE /v1/bookings/:id.  Only the owner may cancel.
func (h *BookingHandler) Cancel(c echo.Context) error {
	b, err := h.svc.CancelBooking(c.Request().Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "booking cancelled", "booking": b})
}

// Availability handles GET /v1/bookings/availability/:court_id with
// date, time and an optional duration (minutes, default 60).
func (h *BookingHandler) Availability(c echo.Context) error {
	courtID := c.Param("court_id")
	date, clock := c.QueryParam("date"), c.QueryParam("time")
	if date == "" || clock == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date and time are required"})
	}
	duration := 60
	if d := c.QueryParam("duration"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "duration must be a positive number of minutes"})
		}
		duration = n
	}
	free, err := h.svc.CheckAvailability(c.Request().Context(), courtID, date, clock, duration)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"court_id":  courtID,
		"date":      date,
		"time":      clock,
		"duration":  duration,
		"available": free,
	})
}

// AvailableSlots handles GET /v1/bookings/available-slots/:court_id?date=.
func (h *BookingHandler) AvailableSlots(c echo.Context) error {
	courtID, date := c.Param("court_id"), c.QueryParam("date")
	slots, err := h.svc.GetAvailableTimeSlots(c.Request().Context(), courtID, date)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"court_id":        courtID,
		"date":            date,
		"available_slots": slots,
	})
}

// ByDate handles GET /v1/bookings/date/:date?club_id=.
func (h *BookingHandler) ByDate(c echo.Context) error {
	date, clubID := c.Param("date"), c.QueryParam("club_id")
	bookings, err := h.svc.ListBookingsByDate(c.Request().Context(), date, clubID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"date":     date,
		"club_id":  clubID,
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// ByUser handles GET /v1/bookings/user/:user_id?from_date=.  Members may
// list their own bookings; listing someone else's needs
// can_view_statistics.
func (h *BookingHandler) ByUser(c echo.Context) error {
	caller, target := middleware.UserID(c), c.Param("user_id")
	if target != caller && !h.perms.HasPermission(c.Request().Context(), caller, repository.PermCanViewStatistics) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	bookings, err := h.svc.ListUserBookings(c.Request().Context(), target, c.QueryParam("from_date"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":  target,
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// Statistics handles GET /v1/bookings/statistics with optional user_id,
// date_from and date_to filters.
func (h *BookingHandler) Statistics(c echo.Context) error {
	f := service.StatisticsFilter{
		UserID:   c.QueryParam("user_id"),
		DateFrom: c.QueryParam("date_from"),
		DateTo:   c.QueryParam("date_to"),
	}
	st, err := h.svc.Statistics(c.Request().Context(), f)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"statistics": st,
		"filters": echo.Map{
			"user_id":   f.UserID,
			"date_from": f.DateFrom,
			"date_to":   f.DateTo,
		},
	})
}
