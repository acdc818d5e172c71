package payment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	paymentService "github.com/jwalitptl/clinic-api/internal/service/payment"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

type Handler struct {
	service *paymentService.Service
	auth    *middleware.AuthMiddleware
}

func NewHandler(service *paymentService.Service, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{service: service, auth: auth}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/create-payment-intent", h.auth.Authenticate(), h.CreateIntent)
	r.PATCH("/update-user/:id", h.Reconcile)
}

func (h *Handler) CreateIntent(c *gin.Context) {
	var req model.PaymentIntentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	intent, err := h.service.CreateIntent(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, intent)
}

func (h *Handler) Reconcile(c *gin.Context) {
	var req model.ReconcileRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	booking, err := h.service.Reconcile(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}
