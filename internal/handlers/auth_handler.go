package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/rsvp/internal/helpers"
	"github.com/joshua-takyi/rsvp/internal/middleware"
	"github.com/joshua-takyi/rsvp/internal/services"
)

// AdminLogin exchanges admin credentials for a bearer token.
func AdminLogin(as *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.LoginInput
		if !bindJSON(c, &in) {
			return
		}
		res, err := as.Login(c.Request.Context(), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(res, "Login successful"))
	}
}

// AdminProfile echoes the verified claims of the caller.
func AdminProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := c.MustGet(middleware.ClaimsKey).(*helpers.AdminClaims)
		if !ok {
			c.JSON(http.StatusInternalServerError, helpers.ErrorResponse("invalid admin claims format"))
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(gin.H{
			"user_id":  claims.Subject,
			"email":    claims.Email,
			"role":     claims.Role,
			"is_admin": claims.IsAdmin(),
		}, ""))
	}
}
