package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farhanmaulana/eventnest/internal/helpers"
	"github.com/farhanmaulana/eventnest/internal/models"
)

type ExperienceResponse struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user"`
	Username    string    `json:"username"`
	EventID     uuid.UUID `json:"event"`
	Description string    `json:"description"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func serializeExperience(experience *models.Experience) ExperienceResponse {
	return ExperienceResponse{
		ID:          experience.ID,
		UserID:      experience.UserID,
		Username:    experience.User.Username,
		EventID:     experience.EventID,
		Description: experience.Description,
		Image:       experience.ImagePath,
		CreatedAt:   experience.CreatedAt,
	}
}

func hasPostedExperience(gormDB *gorm.DB, userID, eventID uuid.UUID) bool {
	if userID == uuid.Nil {
		return false
	}
	var count int64
	gormDB.Model(&models.Experience{}).Where("user_id = ? AND event_id = ?", userID, eventID).Count(&count)
	return count > 0
}

// CreateExperience records a post-event reflection for the caller. The user
// and created_at fields are server-assigned; clients only supply the event,
// the text and an optional image.
func CreateExperience(c *gin.Context) {
	gormDB := getDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	eventIDStr := c.PostForm("event_id")
	description := c.PostForm("description")
	if eventIDStr == "" || description == "" {
		helpers.RespondWithError(c, http.StatusBadRequest, "Missing required fields.")
		return
	}

	eventID, err := uuid.Parse(eventIDStr)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event id.")
		return
	}

	var event models.Event
	if err := gormDB.Where("id = ?", eventID).First(&event).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}

	var user models.User
	if err := gormDB.Where("id = ?", currentUserID(c)).First(&user).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "User not found.")
		return
	}

	experience := models.Experience{
		UserID:      user.ID,
		EventID:     event.ID,
		Description: description,
	}

	imageFile, err := c.FormFile("image")
	if err == nil {
		imagePath, err := helpers.UploadFile(c, imageFile, "experience_images")
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		experience.ImagePath = imagePath
	}

	if err := gormDB.Create(&experience).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create experience.")
		return
	}

	experience.User = user
	c.JSON(http.StatusCreated, serializeExperience(&experience))
}

// ListExperiences returns experiences newest first, optionally filtered by
// the event query parameter, paginated.
func ListExperiences(c *gin.Context) {
	gormDB := getDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	pageNum, err := helpers.StringToInt(c.DefaultQuery("page", "1"))
	if err != nil || pageNum < 1 {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid page number.")
		return
	}
	limitNum, err := helpers.StringToInt(c.DefaultQuery("limit", "10"))
	if err != nil || limitNum < 1 {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid limit.")
		return
	}

	query := gormDB.Model(&models.Experience{})
	if eventID := c.Query("event"); eventID != "" {
		query = query.Where("event_id = ?", eventID)
	}

	var totalCount int64
	query.Count(&totalCount)

	var experiences []models.Experience
	offset := (pageNum - 1) * limitNum
	err = query.Preload("User").Offset(offset).Limit(limitNum).Order("created_at DESC").Find(&experiences).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving experiences.")
		return
	}

	responses := make([]ExperienceResponse, 0, len(experiences))
	for i := range experiences {
		responses = append(responses, serializeExperience(&experiences[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"experiences": responses,
		"total":       totalCount,
		"page":        pageNum,
		"limit":       limitNum,
		"total_pages": (totalCount + int64(limitNum) - 1) / int64(limitNum),
	})
}

func GetExperience(c *gin.Context) {
	gormDB := getDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var experience models.Experience
	if err := gormDB.Preload("User").Where("id = ?", c.Param("id")).First(&experience).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Experience not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving experience.")
		return
	}

	c.JSON(http.StatusOK, serializeExperience(&experience))
}

// DeleteExperience removes an experience. Only the author or an admin may
// delete it.
func DeleteExperience(c *gin.Context) {
	gormDB := getDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var experience models.Experience
	if err := gormDB.Where("id = ?", c.Param("id")).First(&experience).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Experience not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving experience.")
		return
	}

	if experience.UserID != currentUserID(c) && currentRole(c) != models.RoleAdmin {
		helpers.RespondWithError(c, http.StatusForbidden, "You can only delete your own experiences.")
		return
	}

	if err := gormDB.Delete(&experience).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete experience.")
		return
	}

	if experience.ImagePath != "" {
		if err := helpers.DeleteFile(experience.ImagePath); err != nil {
			log.Printf("Error deleting experience image: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Experience deleted successfully."})
}
