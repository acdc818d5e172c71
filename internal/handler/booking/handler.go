package booking

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service/availability"
	bookingService "github.com/jwalitptl/clinic-api/internal/service/booking"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

type Handler struct {
	bookings     *bookingService.Service
	availability *availability.Service
	auth         *middleware.AuthMiddleware
}

func NewHandler(bookings *bookingService.Service, availability *availability.Service, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		bookings:     bookings,
		availability: availability,
		auth:         auth,
	}
}

// CreateResponse is the body of POST /book.
type CreateResponse struct {
	Success       bool           `json:"success"`
	AlreadyExists bool           `json:"alreadyExists"`
	Result        *model.Booking `json:"result"`
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/book", h.Create)

	private := r.Group("")
	private.Use(middleware.Cache(middleware.NoStoreConfig()))
	{
		private.GET("/payment/:id", h.Get)
		private.GET("/available", h.auth.Authenticate(), h.Available)
		private.GET("/myData", h.auth.Authenticate(), h.ListMine)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateBookingRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	result, err := h.bookings.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	status := http.StatusCreated
	if result.AlreadyExists {
		status = http.StatusOK
	}
	c.JSON(status, CreateResponse{
		Success:       !result.AlreadyExists,
		AlreadyExists: result.AlreadyExists,
		Result:        result.Booking,
	})
}

func (h *Handler) Get(c *gin.Context) {
	booking, err := h.bookings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

func (h *Handler) Available(c *gin.Context) {
	identity, ok := handler.Identity(c)
	if !ok {
		return
	}

	slots, err := h.availability.AvailableSlots(c.Request.Context(), identity, c.Query("email"), c.Query("date"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, slots)
}

func (h *Handler) ListMine(c *gin.Context) {
	identity, ok := handler.Identity(c)
	if !ok {
		return
	}

	bookings, err := h.bookings.ListForOwner(c.Request.Context(), identity, c.Query("email"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}
