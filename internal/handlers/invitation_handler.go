package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/rsvp/internal/helpers"
	"github.com/joshua-takyi/rsvp/internal/services"
)

// RequestInvitation answers every well-formed request with the same message.
func RequestInvitation(gs *services.GuestService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.InvitationRequest
		if !bindJSON(c, &req) {
			return
		}
		fallback := helpers.MatchLanguage(c.GetHeader("Accept-Language"))
		if err := gs.RequestInvitation(c.Request.Context(), req, fallback); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, services.InvitationRequestMessage))
	}
}
