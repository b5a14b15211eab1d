package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/rsvp/internal/helpers"
	"github.com/joshua-takyi/rsvp/internal/models"
	"github.com/joshua-takyi/rsvp/internal/services"
)

func ListGuests(gs *services.GuestService) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, limit, ok := pagination(c)
		if !ok {
			return
		}
		guests, total, err := gs.ListGuests(c.Request.Context(), c.Query("status"), offset, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		page := (offset / limit) + 1
		c.JSON(http.StatusOK, helpers.PaginatedResponse(guests, page, limit, total))
	}
}

func CreateGuest(gs *services.GuestService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.CreateGuestInput
		if !bindJSON(c, &in) {
			return
		}
		guest, err := gs.CreateGuest(c.Request.Context(), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, helpers.SuccessResponse(guest, "Guest created successfully"))
	}
}

func GetGuest(gs *services.GuestService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		guest, err := gs.GetGuest(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(guest, ""))
	}
}

func UpdateGuest(gs *services.GuestService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		var update models.GuestUpdate
		if !bindJSON(c, &update) {
			return
		}
		guest, err := gs.UpdateGuest(c.Request.Context(), id, update)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(guest, "Guest updated successfully"))
	}
}

func DeleteGuest(gs *services.GuestService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		if err := gs.DeleteGuest(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, "Guest deleted successfully"))
	}
}

func SendInvitation(gs *services.GuestService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		guest, err := gs.SendInvitation(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(guest, "Invitation sent"))
	}
}

func CreateFamily(gs *services.GuestService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.CreateFamilyInput
		if !bindJSON(c, &in) {
			return
		}
		family, err := gs.CreateFamily(c.Request.Context(), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, helpers.SuccessResponse(family, "Family created successfully"))
	}
}

func CreateChildGuest(gs *services.GuestService) gin.HandlerFunc {
	return func(c *gin.Context) {
		familyID, ok := parseID(c, "id")
		if !ok {
			return
		}
		var in services.CreateChildInput
		if !bindJSON(c, &in) {
			return
		}
		child, err := gs.CreateChildGuest(c.Request.Context(), familyID, in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, helpers.SuccessResponse(child, "Child guest created successfully"))
	}
}

func ListEmailLogs(es *services.EmailLogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, limit, ok := pagination(c)
		if !ok {
			return
		}
		logs, total, err := es.ListEmailLogs(c.Request.Context(), offset, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		page := (offset / limit) + 1
		c.JSON(http.StatusOK, helpers.PaginatedResponse(logs, page, limit, total))
	}
}
