package handlers

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/farhanmaulana/eventnest/internal/models"
)

func postExperienceForm(t *testing.T, r http.Handler, token string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("failed to write form field %s: %v", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close form writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/experiences", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateExperience(t *testing.T) {
	r, db, _ := newTestRouter(t)
	admin := createTestUser(t, db, "admin", "admin@example.com", models.RoleAdmin)
	user := createTestUser(t, db, "budi", "budi@example.com", models.RoleUser)
	event := createTestEvent(t, db, admin, "GopherCon ID", time.Now())

	w := postExperienceForm(t, r, accessTokenFor(t, user), map[string]string{
		"event_id":    event.ID.String(),
		"description": "Amazing talks this year.",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp ExperienceResponse
	decodeBody(t, w, &resp)
	if resp.Username != "budi" {
		t.Errorf("username = %q, want budi", resp.Username)
	}
	if resp.UserID != user.ID {
		t.Error("user must be server-assigned from the token, not client-supplied")
	}
	if resp.CreatedAt.IsZero() {
		t.Error("created_at must be server-assigned")
	}

	// A second experience for the same pair is allowed.
	w = postExperienceForm(t, r, accessTokenFor(t, user), map[string]string{
		"event_id":    event.ID.String(),
		"description": "Also the food was great.",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected second experience to be accepted, got %d", w.Code)
	}

	if !hasPostedExperience(db, user.ID, event.ID) {
		t.Error("hasPostedExperience should report true after posting")
	}
	if hasPostedExperience(db, admin.ID, event.ID) {
		t.Error("hasPostedExperience should report false for a user who has not posted")
	}
}

func TestCreateExperienceValidation(t *testing.T) {
	r, db, _ := newTestRouter(t)
	admin := createTestUser(t, db, "admin", "admin@example.com", models.RoleAdmin)
	user := createTestUser(t, db, "budi", "budi@example.com", models.RoleUser)
	createTestEvent(t, db, admin, "GopherCon ID", time.Now())
	token := accessTokenFor(t, user)

	w := postExperienceForm(t, r, token, map[string]string{"description": "no event"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without event_id, got %d", w.Code)
	}

	w = postExperienceForm(t, r, token, map[string]string{
		"event_id":    "00000000-0000-0000-0000-000000000000",
		"description": "ghost event",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown event, got %d", w.Code)
	}
}

func TestListExperiencesByEvent(t *testing.T) {
	r, db, _ := newTestRouter(t)
	admin := createTestUser(t, db, "admin", "admin@example.com", models.RoleAdmin)
	user := createTestUser(t, db, "budi", "budi@example.com", models.RoleUser)
	eventA := createTestEvent(t, db, admin, "event-a", time.Now())
	eventB := createTestEvent(t, db, admin, "event-b", time.Now())

	for i, event := range []*models.Event{eventA, eventA, eventB} {
		experience := models.Experience{
			UserID:      user.ID,
			EventID:     event.ID,
			Description: fmt.Sprintf("experience %d", i),
		}
		if err := db.Create(&experience).Error; err != nil {
			t.Fatalf("failed to seed experience: %v", err)
		}
	}

	w := doJSON(r, http.MethodGet, fmt.Sprintf("/v1/experiences?event=%s", eventA.ID), accessTokenFor(t, user), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Experiences []ExperienceResponse `json:"experiences"`
		Total       int64                `json:"total"`
	}
	decodeBody(t, w, &resp)
	if resp.Total != 2 || len(resp.Experiences) != 2 {
		t.Fatalf("expected 2 experiences for event-a, got total=%d len=%d", resp.Total, len(resp.Experiences))
	}
	for _, experience := range resp.Experiences {
		if experience.EventID != eventA.ID {
			t.Errorf("filter leaked experience for event %s", experience.EventID)
		}
	}

	w = doJSON(r, http.MethodGet, "/v1/experiences?limit=bogus", accessTokenFor(t, user), nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid limit, got %d", w.Code)
	}
}

func TestDeleteExperienceOwnership(t *testing.T) {
	r, db, _ := newTestRouter(t)
	admin := createTestUser(t, db, "admin", "admin@example.com", models.RoleAdmin)
	author := createTestUser(t, db, "budi", "budi@example.com", models.RoleUser)
	other := createTestUser(t, db, "sari", "sari@example.com", models.RoleUser)
	event := createTestEvent(t, db, admin, "GopherCon ID", time.Now())

	experience := models.Experience{UserID: author.ID, EventID: event.ID, Description: "mine"}
	if err := db.Create(&experience).Error; err != nil {
		t.Fatalf("failed to seed experience: %v", err)
	}

	path := fmt.Sprintf("/v1/experiences/%s", experience.ID)

	w := doJSON(r, http.MethodDelete, path, accessTokenFor(t, other), nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 deleting someone else's experience, got %d", w.Code)
	}

	w = doJSON(r, http.MethodDelete, path, accessTokenFor(t, author), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 deleting own experience, got %d: %s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&models.Experience{}).Where("id = ?", experience.ID).Count(&count)
	if count != 0 {
		t.Error("experience row should be gone")
	}
}
