package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service/authority"
	userService "github.com/jwalitptl/clinic-api/internal/service/user"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

type Handler struct {
	users     *userService.Service
	authority *authority.Service
	auth      *middleware.AuthMiddleware
}

func NewHandler(users *userService.Service, authority *authority.Service, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		users:     users,
		authority: authority,
		auth:      auth,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.PUT("/token", h.Token)
	r.GET("/users", h.ListUsers)
	r.GET("/admin", h.IsAdmin)
	r.PUT("/users/admin/:email", h.auth.Authenticate(), h.auth.RequireAdmin(), h.Promote)
}

// Token upserts the caller's profile and returns an access token. Any role
// in the body is ignored.
func (h *Handler) Token(c *gin.Context) {
	var profile model.UserProfile
	if !handler.BindJSON(c, &profile) {
		return
	}

	resp, err := h.users.Login(c.Request.Context(), &profile)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) IsAdmin(c *gin.Context) {
	ok, err := h.authority.IsAdmin(c.Request.Context(), c.Query("email"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ok)
}

func (h *Handler) Promote(c *gin.Context) {
	identity, ok := handler.Identity(c)
	if !ok {
		return
	}

	result, err := h.authority.SetAdmin(c.Request.Context(), identity, c.Param("email"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
