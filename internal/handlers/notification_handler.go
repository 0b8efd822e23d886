package handlers

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/farhanmaulana/eventnest/internal/helpers"
	"github.com/farhanmaulana/eventnest/internal/middleware"
	"github.com/farhanmaulana/eventnest/internal/models"
)

type NotificationRequest struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// maxInFlightDeliveries caps concurrent SMTP sessions during a fanout.
const maxInFlightDeliveries = 8

// SendNotification emails every interested user about an event. Delivery is
// best-effort: a failure for one recipient is logged and skipped, and the
// reported count covers successful deliveries only. The admin check is done
// here as well as in the route group so a routing change cannot silently
// expose the endpoint.
func SendNotification(c *gin.Context) {
	if currentRole(c) != models.RoleAdmin {
		helpers.RespondWithError(c, http.StatusForbidden, "Admin access required.")
		return
	}

	var req NotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Subject == "" || req.Message == "" {
		helpers.RespondWithError(c, http.StatusBadRequest, "Subject and Message are required.")
		return
	}

	gormDB := getDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var event models.Event
	if err := gormDB.Where("id = ?", c.Param("id")).First(&event).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}

	m := middleware.GetMailer(c)
	if m == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Mailer not configured.")
		return
	}

	var interests []models.Interest
	if err := gormDB.Preload("User").Where("event_id = ?", event.ID).Find(&interests).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving interested users.")
		return
	}

	subject := fmt.Sprintf("Update Regarding: %s- %s", event.Title, req.Subject)

	var sentCount int64
	var wg sync.WaitGroup
	sem := make(chan struct{}, maxInFlightDeliveries)

	for _, interest := range interests {
		user := interest.User
		if user.Email == "" {
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(user models.User) {
			defer wg.Done()
			defer func() { <-sem }()

			body := fmt.Sprintf("Hello %s,\n\n%s\n\nRegards,\nEvent Management Team", user.Username, req.Message)
			if err := m.Send(user.Email, subject, body); err != nil {
				log.Printf("Failed to send email to %s: %v", user.Email, err)
				return
			}
			atomic.AddInt64(&sentCount, 1)
		}(user)
	}

	wg.Wait()

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"count":  sentCount,
	})
}
