package catalog

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	catalogService "github.com/jwalitptl/clinic-api/internal/service/catalog"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

type Handler struct {
	service *catalogService.Service
	auth    *middleware.AuthMiddleware
}

func NewHandler(service *catalogService.Service, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{service: service, auth: auth}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	public := r.Group("")
	public.Use(middleware.Cache(middleware.PublicListCacheConfig(30)))
	{
		public.GET("/service", h.ListServices)
		public.GET("/doctorService", h.ListServiceNames)
		public.GET("/manageDoctor", h.ListDoctors)
	}

	r.POST("/addDoctor", h.auth.Authenticate(), h.AddDoctor)
	r.DELETE("/delete-doctor/:id", h.auth.Authenticate(), h.auth.RequireAdmin(), h.DeleteDoctor)
}

func (h *Handler) ListServices(c *gin.Context) {
	services, err := h.service.ListServices(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, services)
}

func (h *Handler) ListServiceNames(c *gin.Context) {
	names, err := h.service.ListServiceNames(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, names)
}

func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.service.ListDoctors(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, doctors)
}

func (h *Handler) AddDoctor(c *gin.Context) {
	var req model.CreateDoctorRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	doctor, err := h.service.AddDoctor(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doctor)
}

func (h *Handler) DeleteDoctor(c *gin.Context) {
	identity, ok := handler.Identity(c)
	if !ok {
		return
	}

	result, err := h.service.DeleteDoctor(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
