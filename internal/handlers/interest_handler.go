package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/farhanmaulana/eventnest/internal/helpers"
	"github.com/farhanmaulana/eventnest/internal/models"
)

func countInterested(gormDB *gorm.DB, eventID uuid.UUID) int64 {
	var count int64
	gormDB.Model(&models.Interest{}).Where("event_id = ?", eventID).Count(&count)
	return count
}

func isInterested(gormDB *gorm.DB, userID, eventID uuid.UUID) bool {
	if userID == uuid.Nil {
		return false
	}
	var count int64
	gormDB.Model(&models.Interest{}).Where("user_id = ? AND event_id = ?", userID, eventID).Count(&count)
	return count > 0
}

// ToggleInterest flips the caller's interest in an event. The insert goes
// through an on-conflict clause so two racing first toggles cannot both
// create a row; the loser of the race observes the existing row and removes
// it, which is exactly toggle semantics.
func ToggleInterest(c *gin.Context) {
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

	if currentRole(c) == models.RoleAdmin {
		helpers.RespondWithError(c, http.StatusBadRequest, "Admins cannot express interest in events.")
		return
	}

	userID := currentUserID(c)
	interest := models.Interest{UserID: userID, EventID: event.ID}
	result := gormDB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "event_id"}},
		DoNothing: true,
	}).Create(&interest)
	if result.Error != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update interest.")
		return
	}

	if result.RowsAffected == 0 {
		if err := gormDB.Where("user_id = ? AND event_id = ?", userID, event.ID).Delete(&models.Interest{}).Error; err != nil {
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update interest.")
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Interest removed", "is_interested": false})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Interest added", "is_interested": true})
}

// ListInterestedUsers returns the users interested in an event, newest
// interest first. Admin only.
func ListInterestedUsers(c *gin.Context) {
	if currentRole(c) != models.RoleAdmin {
		helpers.RespondWithError(c, http.StatusForbidden, "Only admin can view interested users.")
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

	var interests []models.Interest
	err := gormDB.Preload("User").
		Where("event_id = ?", event.ID).
		Order("interested_at DESC").
		Find(&interests).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving interested users.")
		return
	}

	c.JSON(http.StatusOK, interests)
}
