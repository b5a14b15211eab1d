package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/rsvp/internal/helpers"
	"github.com/joshua-takyi/rsvp/internal/models"
	"github.com/joshua-takyi/rsvp/internal/services"
)

func GetRSVPInfo(s *services.RSVPService) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := s.GetRSVPInfo(c.Request.Context(), c.Param("token"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(view, ""))
	}
}

func SubmitRSVP(s *services.RSVPService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sub models.RSVPSubmission
		if !bindJSON(c, &sub) {
			return
		}

		res, err := s.SubmitRSVP(c.Request.Context(), c.Param("token"), sub)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(res, res.Message))
	}
}
