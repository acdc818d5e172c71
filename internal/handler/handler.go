// Package handler holds helpers shared by the HTTP handlers.
package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
	"github.com/jwalitptl/clinic-api/pkg/validator"
)

// BindJSON decodes and validates the request body into obj. On failure it
// writes a 400 and returns false.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		httputil.RespondWithError(c, errors.BadRequest(validator.Message(err), err))
		return false
	}
	return true
}

// Identity returns the authenticated caller. Routes using it sit behind
// AuthMiddleware.Authenticate; a missing identity is answered with 401.
func Identity(c *gin.Context) (*model.Identity, bool) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		httputil.RespondWithError(c, errors.Unauthorized(nil))
		return nil, false
	}
	return identity, true
}
