package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/rsvp/internal/helpers"
	"github.com/joshua-takyi/rsvp/internal/models"
	"github.com/joshua-takyi/rsvp/internal/services"
)

// respondError maps domain errors onto status codes. Anything unrecognised
// is handed to the ErrorHandler middleware as a 500.
func respondError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, helpers.ValidationResponse(verr.Fields))
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, helpers.ErrorResponse("not found"))
	case errors.Is(err, models.ErrGuestAlreadyExists):
		c.JSON(http.StatusConflict, helpers.ErrorResponse(models.ErrGuestAlreadyExists.Error()))
	case errors.Is(err, models.ErrCannotAddPlusOne):
		c.JSON(http.StatusUnprocessableEntity, helpers.ValidationResponse(map[string]string{
			"plus_one": models.ErrCannotAddPlusOne.Error(),
		}))
	case errors.Is(err, models.ErrCannotChangePlusOneEmail):
		c.JSON(http.StatusUnprocessableEntity, helpers.ValidationResponse(map[string]string{
			"plus_one": models.ErrCannotChangePlusOneEmail.Error(),
		}))
	case errors.Is(err, models.ErrNotFamilyMember):
		c.JSON(http.StatusUnprocessableEntity, helpers.ValidationResponse(map[string]string{
			"family_member_updates": models.ErrNotFamilyMember.Error(),
		}))
	case errors.Is(err, services.ErrGuestNotInvitable):
		c.JSON(http.StatusUnprocessableEntity, helpers.ErrorResponse(err.Error()))
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, helpers.ErrorResponse(err.Error()))
	default:
		_ = c.Error(err)
	}
}

// bindJSON decodes the body, answering 422 on malformed input.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusUnprocessableEntity, helpers.ErrorResponse("invalid request body: "+err.Error()))
		return false
	}
	return true
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	raw := strings.Trim(strings.TrimSpace(c.Param(param)), "\"'")
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid "+param+" format"))
		return uuid.Nil, false
	}
	return id, true
}

// pagination reads offset and limit query parameters.
func pagination(c *gin.Context) (offset, limit int, ok bool) {
	var err error
	if offset, err = strconv.Atoi(c.DefaultQuery("offset", "0")); err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid offset parameter"))
		return 0, 0, false
	}
	if limit, err = strconv.Atoi(c.DefaultQuery("limit", "50")); err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid limit parameter"))
		return 0, 0, false
	}
	offset, limit = services.Page(offset, limit)
	return offset, limit, true
}
