// Package httpapi отдаёт бронирования и журнал аудита только на чтение.
package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jinzhu/now"

	"github.com/Leganyst/lesson-booking/internal/calendar"
	"github.com/Leganyst/lesson-booking/internal/repository"
)

const (
	defaultLimit = 20
	maxLimit     = 100
	dayLayout    = "2006-01-02"
)

type Handler struct {
	bookings    repository.BookingRepository
	audits      repository.AuditRepository
	instructors repository.InstructorRepository
	logger      *slog.Logger
}

func NewHandler(
	bookings repository.BookingRepository,
	audits repository.AuditRepository,
	instructors repository.InstructorRepository,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		bookings:    bookings,
		audits:      audits,
		instructors: instructors,
		logger:      logger.With("component", "httpapi"),
	}
}

// GET /instructors/:instructorID/bookings?day=YYYY-MM-DD&page=&limit=
//
// day трактуется в часовом поясе инструктора; без day отдаётся сегодняшний день.
func (h *Handler) ListBookings(c *gin.Context) {
	instructorID, ok := uuidParam(c, "instructorID")
	if !ok {
		return
	}
	page, limit, ok := pageParams(c)
	if !ok {
		return
	}

	instructor, err := h.instructors.GetByID(c, instructorID)
	if err != nil {
		h.fail(c, err)
		return
	}
	loc := instructor.Location()

	day := time.Now().In(loc)
	if raw := c.Query("day"); raw != "" {
		day, err = time.ParseInLocation(dayLayout, raw, loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("day must be YYYY-MM-DD"))
			return
		}
	}
	from := now.With(day).BeginningOfDay()
	to := now.With(day).EndOfDay()

	rows, total, err := h.bookings.ListByInstructorRange(c, instructorID, from, to, limit, calendar.Offset(page, limit))
	if err != nil {
		h.fail(c, err)
		return
	}

	views := make([]bookingView, 0, len(rows))
	for _, b := range rows {
		views = append(views, toBookingView(b))
	}
	c.JSON(http.StatusOK, paginatedResponse(views, page, limit, int(total)))
}

// GET /instructors/:instructorID/bookings/:bookingID
func (h *Handler) GetBooking(c *gin.Context) {
	instructorID, ok := uuidParam(c, "instructorID")
	if !ok {
		return
	}
	bookingID, ok := uuidParam(c, "bookingID")
	if !ok {
		return
	}

	b, err := h.bookings.GetByID(c, bookingID, instructorID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(toBookingView(*b)))
}

// GET /instructors/:instructorID/bookings/:bookingID/audit?page=&limit=
func (h *Handler) BookingAudit(c *gin.Context) {
	instructorID, ok := uuidParam(c, "instructorID")
	if !ok {
		return
	}
	bookingID, ok := uuidParam(c, "bookingID")
	if !ok {
		return
	}
	page, limit, ok := pageParams(c)
	if !ok {
		return
	}

	if _, err := h.bookings.GetByID(c, bookingID, instructorID); err != nil {
		h.fail(c, err)
		return
	}
	rows, err := h.audits.ListByBooking(c, bookingID, instructorID)
	if err != nil {
		h.fail(c, err)
		return
	}

	p := calendar.Paginate(toAuditViews(rows), page, limit)
	c.JSON(http.StatusOK, paginatedResponse(p.Items, p.Page, p.PageSize, p.Total))
}

// GET /instructors/:instructorID/audit?page=&limit=
func (h *Handler) InstructorAudit(c *gin.Context) {
	instructorID, ok := uuidParam(c, "instructorID")
	if !ok {
		return
	}
	page, limit, ok := pageParams(c)
	if !ok {
		return
	}

	rows, total, err := h.audits.ListByInstructor(c, instructorID, limit, calendar.Offset(page, limit))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, paginatedResponse(toAuditViews(rows), page, limit, int(total)))
}

func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, errorResponse("not found"))
		return
	}
	h.logger.ErrorContext(c, "read api failed",
		"request_id", c.GetString("request_id"),
		"path", c.FullPath(),
		"error", err,
	)
	c.JSON(http.StatusInternalServerError, errorResponse("internal server error"))
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(name+" must be a uuid"))
		return uuid.Nil, false
	}
	return id, true
}

func pageParams(c *gin.Context) (page, limit int, ok bool) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, errorResponse("page must be a positive integer"))
		return 0, 0, false
	}
	limit, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, errorResponse("limit must be a positive integer"))
		return 0, 0, false
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit, true
}
