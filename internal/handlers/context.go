package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func getDB(c *gin.Context) *gorm.DB {
	db, exists := c.Get("db")
	if !exists {
		return nil
	}
	return db.(*gorm.DB)
}

// currentUserID returns the authenticated caller's id, or uuid.Nil when the
// request went through an unauthenticated route.
func currentUserID(c *gin.Context) uuid.UUID {
	id, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil
	}
	userID, ok := id.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return userID
}

func currentRole(c *gin.Context) string {
	role, exists := c.Get("role")
	if !exists {
		return ""
	}
	r, _ := role.(string)
	return r
}
