package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter собирает gin.Engine с middleware и маршрутами API.
func NewRouter(h *Handler, logger *slog.Logger, production bool) *gin.Engine {
	if production {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(RequestID())
	r.Use(AccessLog(logger))
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, successResponse(gin.H{"status": "ok"}))
	})

	instructors := r.Group("/instructors/:instructorID")
	{
		instructors.GET("/bookings", h.ListBookings)
		instructors.GET("/bookings/:bookingID", h.GetBooking)
		instructors.GET("/bookings/:bookingID/audit", h.BookingAudit)
		instructors.GET("/audit", h.InstructorAudit)
	}

	return r
}
