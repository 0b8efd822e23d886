package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farhanmaulana/eventnest/internal/helpers"
	"github.com/farhanmaulana/eventnest/internal/models"
)

type CreateEventRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description" binding:"required"`
	Date        time.Time  `json:"date" binding:"required"`
	EndDate     *time.Time `json:"end_date"`
	Location    string     `json:"location" binding:"required"`
}

type UpdateEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Date        *time.Time `json:"date"`
	EndDate     *time.Time `json:"end_date"`
	Location    *string    `json:"location"`
}

type EventResponse struct {
	ID                  uuid.UUID   `json:"id"`
	Title               string      `json:"title"`
	Description         string      `json:"description"`
	Date                time.Time   `json:"date"`
	EndDate             *time.Time  `json:"end_date,omitempty"`
	Location            string      `json:"location"`
	CreatorName         string      `json:"creator_name"`
	CreatedBy           models.User `json:"created_by"`
	CreatedAt           time.Time   `json:"created_at"`
	InterestedCount     int64       `json:"interested_count"`
	IsInterested        bool        `json:"is_interested"`
	HasPostedExperience bool        `json:"has_posted_experience"`
}

// serializeEvent annotates an event with the live interested count and the
// requester's own interest/experience flags.
func serializeEvent(gormDB *gorm.DB, event *models.Event, requesterID uuid.UUID) EventResponse {
	return EventResponse{
		ID:                  event.ID,
		Title:               event.Title,
		Description:         event.Description,
		Date:                event.Date,
		EndDate:             event.EndDate,
		Location:            event.Location,
		CreatorName:         event.CreatedBy.Username,
		CreatedBy:           event.CreatedBy,
		CreatedAt:           event.CreatedAt,
		InterestedCount:     countInterested(gormDB, event.ID),
		IsInterested:        isInterested(gormDB, requesterID, event.ID),
		HasPostedExperience: hasPostedExperience(gormDB, requesterID, event.ID),
	}
}

func applyEventSort(query *gorm.DB, sortBy string) *gorm.DB {
	switch sortBy {
	case "most_interested":
		return query.Order("(SELECT COUNT(*) FROM interests WHERE interests.event_id = events.id) DESC")
	case "newest":
		// Kept oldest-first to match the documented contract.
		return query.Order("created_at ASC")
	case "date":
		return query.Order("date ASC")
	default:
		return query.Order("created_at DESC")
	}
}

func ListEvents(c *gin.Context) {
	gormDB := getDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	query := applyEventSort(gormDB.Model(&models.Event{}), c.Query("sort"))

	var events []models.Event
	if err := query.Preload("CreatedBy").Find(&events).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving events.")
		return
	}

	requesterID := currentUserID(c)
	responses := make([]EventResponse, 0, len(events))
	for i := range events {
		responses = append(responses, serializeEvent(gormDB, &events[i], requesterID))
	}

	c.JSON(http.StatusOK, responses)
}

func GetEvent(c *gin.Context) {
	gormDB := getDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var event models.Event
	if err := gormDB.Preload("CreatedBy").Where("id = ?", c.Param("id")).First(&event).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}

	c.JSON(http.StatusOK, serializeEvent(gormDB, &event, currentUserID(c)))
}

func CreateEvent(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	gormDB := getDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var creator models.User
	if err := gormDB.Where("id = ?", currentUserID(c)).First(&creator).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "User not found.")
		return
	}

	event := models.Event{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		EndDate:     req.EndDate,
		Location:    req.Location,
		CreatedByID: creator.ID,
	}

	if err := gormDB.Create(&event).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create event.")
		return
	}

	event.CreatedBy = creator
	c.JSON(http.StatusCreated, serializeEvent(gormDB, &event, currentUserID(c)))
}

// UpdateEvent serves both PUT and PATCH. Any admin may update any event,
// not only its creator.
func UpdateEvent(c *gin.Context) {
	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	gormDB := getDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var event models.Event
	if err := gormDB.Preload("CreatedBy").Where("id = ?", c.Param("id")).First(&event).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error finding event.")
		return
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Date != nil {
		event.Date = *req.Date
	}
	if req.EndDate != nil {
		event.EndDate = req.EndDate
	}
	if req.Location != nil {
		event.Location = *req.Location
	}

	if err := gormDB.Save(&event).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update event.")
		return
	}

	c.JSON(http.StatusOK, serializeEvent(gormDB, &event, currentUserID(c)))
}

func DeleteEvent(c *gin.Context) {
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
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error finding event.")
		return
	}

	// Dependent interests and experiences go with the event.
	err := gormDB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", event.ID).Delete(&models.Interest{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", event.ID).Delete(&models.Experience{}).Error; err != nil {
			return err
		}
		return tx.Delete(&event).Error
	})
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete event.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully."})
}
