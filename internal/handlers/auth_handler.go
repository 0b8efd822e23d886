package handlers

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/farhanmaulana/eventnest/internal/helpers"
	"github.com/farhanmaulana/eventnest/internal/models"
)

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"omitempty,oneof=admin user"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

const (
	accessTokenTTL  = time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

func signToken(user *models.User, tokenType string, ttl time.Duration, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID.String(),
		"role":    user.Role,
		"type":    tokenType,
		"exp":     time.Now().Add(ttl).Unix(),
	})
	return token.SignedString([]byte(secret))
}

func generateTokenPair(user *models.User) (access string, refresh string, err error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", "", jwt.ErrInvalidKey
	}

	access, err = signToken(user, "access", accessTokenTTL, secret)
	if err != nil {
		return "", "", err
	}
	refresh, err = signToken(user, "refresh", refreshTokenTTL, secret)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var existingUser models.User
	if result := gormDB.Where("username = ?", req.Username).First(&existingUser); result.Error == nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "A user with that username already exists.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to hash the password.")
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}

	user := models.User{
		ID:       uuid.New(),
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
		Role:     role,
	}

	if err := gormDB.Create(&user).Error; err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Failed to create user.")
		return
	}

	access, refresh, err := generateTokenPair(&user)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate tokens.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":    user,
		"access":  access,
		"refresh": refresh,
	})
}

func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var user models.User
	if err := gormDB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials.")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials.")
		return
	}

	access, refresh, err := generateTokenPair(&user)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate tokens.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":    user,
		"access":  access,
		"refresh": refresh,
	})
}

// RefreshToken exchanges a valid refresh token for a fresh access token.
func RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Refresh token is required.")
		return
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		helpers.RespondWithError(c, http.StatusInternalServerError, "JWT_SECRET not configured.")
		return
	}

	token, err := jwt.Parse(req.Refresh, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid or expired refresh token.")
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid token claims.")
		return
	}
	if tokenType, _ := claims["type"].(string); tokenType != "refresh" {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid token type.")
		return
	}

	userIDStr, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid token claims.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var user models.User
	if err := gormDB.Where("id = ?", userID).First(&user).Error; err != nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User no longer exists.")
		return
	}

	access, err := signToken(&user, "access", accessTokenTTL, secret)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"access": access})
}
