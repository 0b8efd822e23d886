package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/farhanmaulana/eventnest/internal/mailer"
	"github.com/farhanmaulana/eventnest/internal/middleware"
	"github.com/farhanmaulana/eventnest/internal/models"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret")
	os.Exit(m.Run())
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

// fakeMailer records deliveries and can be told to fail for specific
// recipients.
type fakeMailer struct {
	mu      sync.Mutex
	sent    []sentMail
	failFor map[string]bool
}

func (f *fakeMailer) Send(to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[to] {
		return fmt.Errorf("smtp rejected %s", to)
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	err = db.AutoMigrate(&models.User{}, &models.Event{}, &models.Interest{}, &models.Experience{})
	if err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

// newTestRouter wires the same route table the server does, against an
// in-memory database and a fake mailer.
func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB, *fakeMailer) {
	t.Helper()

	db := newTestDB(t)
	fm := &fakeMailer{failFor: map[string]bool{}}

	r := gin.New()
	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.MailerMiddleware(mailer.Mailer(fm)))

	public := r.Group("/v1")
	{
		public.POST("/register", Register)
		public.POST("/login", Login)
		public.POST("/token/refresh", RefreshToken)
	}

	protected := r.Group("/v1")
	protected.Use(middleware.JWTAuthMiddleware())
	{
		protected.GET("/events", ListEvents)
		protected.GET("/events/:id", GetEvent)
		protected.POST("/events/:id/interested", ToggleInterest)
		protected.GET("/events/:id/interested_users", ListInterestedUsers)
		protected.POST("/experiences", CreateExperience)
		protected.GET("/experiences", ListExperiences)
		protected.GET("/experiences/:id", GetExperience)
		protected.DELETE("/experiences/:id", DeleteExperience)
	}

	admin := r.Group("/v1")
	admin.Use(middleware.JWTAuthMiddleware(), middleware.AdminOnlyMiddleware())
	{
		admin.POST("/events", CreateEvent)
		admin.PUT("/events/:id", UpdateEvent)
		admin.PATCH("/events/:id", UpdateEvent)
		admin.DELETE("/events/:id", DeleteEvent)
		admin.POST("/events/:id/send_notification", SendNotification)
	}

	return r, db, fm
}

func createTestUser(t *testing.T, db *gorm.DB, username, email, role string) *models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := models.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
		Role:     role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return &user
}

func createTestEvent(t *testing.T, db *gorm.DB, creator *models.User, title string, createdAt time.Time) *models.Event {
	t.Helper()

	event := models.Event{
		Title:       title,
		Description: "description of " + title,
		Date:        time.Now().Add(72 * time.Hour),
		Location:    "Jakarta",
		CreatedByID: creator.ID,
		CreatedAt:   createdAt,
	}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("failed to create event %s: %v", title, err)
	}
	return &event
}

func accessTokenFor(t *testing.T, user *models.User) string {
	t.Helper()

	access, _, err := generateTokenPair(user)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return access
}

func doJSON(r http.Handler, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
}
