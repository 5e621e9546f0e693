package controllers

import (
	"net/http"
	"time"

	"detailpro-backend/models"
	"detailpro-backend/services"
	"detailpro-backend/utils"

	"github.com/gin-gonic/gin"
)

type LinkJobsInput struct {
	Events []models.CalendarEvent `json:"events" binding:"required"`
}

// LinkCustomerJobs matches booking-system events against a customer's phone
// identity and returns them partitioned into upcoming and past jobs. The
// events come from the caller because the calendar lives in an external
// system this backend does not query directly.
func LinkCustomerJobs(c *gin.Context) {
	shopUUID, _, ok := shopAndUserFromContext(c)
	if !ok {
		return
	}

	customer, ok := customerByID(c, shopUUID, false)
	if !ok {
		return
	}

	var input LinkJobsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	identity := utils.CanonicalPhone{
		E164:   customer.PhoneE164,
		Last10: customer.PhoneLast10,
	}

	linked := services.LinkCustomerEvents(identity, shopRegion(shopUUID), input.Events, time.Now())
	c.JSON(http.StatusOK, linked)
}
