package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hospitex/medscan/configs"
	"github.com/hospitex/medscan/internal/ai"
	"github.com/hospitex/medscan/internal/common"
	"github.com/hospitex/medscan/internal/extractor"
	"github.com/hospitex/medscan/internal/scheduler"
	"github.com/hospitex/medscan/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider serves canned recognition and completion responses
type stubProvider struct {
	recognized string
	completion string
}

func (s *stubProvider) RecognizeText(ctx context.Context, imageData []byte, mimeType string, reqCtx *common.RequestContext) (string, error) {
	return s.recognized, nil
}

func (s *stubProvider) CompleteText(ctx context.Context, system, user string, maxTokens int, reqCtx *common.RequestContext) (string, error) {
	return s.completion, nil
}

func (s *stubProvider) ProviderName() string { return "stub" }

func newTestRouter(t *testing.T, provider ai.Provider, calendarURL string) (*gin.Engine, *Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	configs.UPLOAD_DIR = t.TempDir()

	handler := NewHandler(
		provider,
		extractor.New(provider),
		scheduler.New(calendarURL),
		session.NewStore(30*time.Minute),
	)

	router := gin.New()
	router.POST("/api/v1/documents/scan", handler.ScanDocument)
	router.GET("/api/v1/sessions/:id", handler.GetSession)
	router.PUT("/api/v1/sessions/:id/fields", handler.UpdateFields)
	router.DELETE("/api/v1/sessions/:id", handler.DeleteSession)
	router.POST("/api/v1/sessions/:id/schedule", handler.ScheduleEvent)
	return router, handler
}

func uploadBody(t *testing.T, fieldName, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(fieldName, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func testImagePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func strPtr(s string) *string { return &s }

func TestScanDocumentRequiresFile(t *testing.T) {
	router, _ := newTestRouter(t, &stubProvider{}, "")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/scan", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScanDocumentRejectsUnsupportedExtension(t *testing.T) {
	router, _ := newTestRouter(t, &stubProvider{}, "")

	body, contentType := uploadBody(t, "file", "document.gif", []byte("gif bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/scan", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Unsupported file type")
}

func TestScanDocumentRejectsUndecodableImage(t *testing.T) {
	router, _ := newTestRouter(t, &stubProvider{}, "")

	body, contentType := uploadBody(t, "file", "document.jpg", []byte("not actually a jpeg"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/scan", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Could not decode image")
}

func TestScanDocumentFullPipeline(t *testing.T) {
	provider := &stubProvider{
		recognized: "Appointment 2024-05-01 14:30 City Hospital Cardiology Dr. Smith",
		completion: `{"date": "2024-05-01", "time": "14:30", "location": "City Hospital", "department": "Cardiology", "doctor": "Dr. Smith"}`,
	}
	router, _ := newTestRouter(t, provider, "")

	body, contentType := uploadBody(t, "file", "document.png", testImagePNG(t))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/scan", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		SessionID      string           `json:"session_id"`
		RecognizedText string           `json:"recognized_text"`
		Record         extractor.Record `json:"record"`
		FallbackUsed   bool             `json:"fallback_used"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.NotEmpty(t, response.SessionID)
	assert.Equal(t, provider.recognized, response.RecognizedText)
	assert.False(t, response.FallbackUsed)
	require.NotNil(t, response.Record.Doctor)
	assert.Equal(t, "Dr. Smith", *response.Record.Doctor)

	// Session is retrievable afterwards
	getReq := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+response.SessionID, nil)
	getW := httptest.NewRecorder()
	router.ServeHTTP(getW, getReq)
	assert.Equal(t, http.StatusOK, getW.Code)
}

func TestGetSessionNotFound(t *testing.T) {
	router, _ := newTestRouter(t, &stubProvider{}, "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/unknown-id", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateFieldsEditsRecord(t *testing.T) {
	router, handler := newTestRouter(t, &stubProvider{}, "")
	sess := handler.Sessions.Create("text", extractor.Record{Date: strPtr("2024-05-01")}, false)

	payload := `{"doctor": "Dr. Jones", "date": ""}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/sessions/"+sess.ID+"/fields", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var updated session.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	require.NotNil(t, updated.Record.Doctor)
	assert.Equal(t, "Dr. Jones", *updated.Record.Doctor)
	assert.Nil(t, updated.Record.Date)
}

func TestDeleteSessionEndsInteraction(t *testing.T) {
	router, handler := newTestRouter(t, &stubProvider{}, "")
	sess := handler.Sessions.Create("text", extractor.Record{Date: strPtr("2024-05-01")}, false)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/"+sess.ID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	getReq := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+sess.ID, nil)
	getW := httptest.NewRecorder()
	router.ServeHTTP(getW, getReq)
	assert.Equal(t, http.StatusNotFound, getW.Code)
}

func TestScheduleEventRequiresFields(t *testing.T) {
	router, handler := newTestRouter(t, &stubProvider{}, "")
	sess := handler.Sessions.Create("text", extractor.Record{Date: strPtr("2024-05-01")}, false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+sess.ID+"/schedule", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response struct {
		MissingFields []string `json:"missing_fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.ElementsMatch(t, []string{"time", "location"}, response.MissingFields)
}

func TestScheduleEventSuccess(t *testing.T) {
	calendar := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "success", "eventId": "evt-42"}`))
	}))
	defer calendar.Close()

	router, handler := newTestRouter(t, &stubProvider{}, calendar.URL)
	sess := handler.Sessions.Create("text", extractor.Record{
		Date:       strPtr("2024-05-01"),
		Time:       strPtr("14:30"),
		Location:   strPtr("City Hospital"),
		Department: strPtr("Cardiology"),
	}, false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+sess.ID+"/schedule", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		EventID       string `json:"event_id"`
		Title         string `json:"title"`
		StartDateTime string `json:"start_datetime"`
		EndDateTime   string `json:"end_datetime"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "evt-42", response.EventID)
	assert.Equal(t, "Cardiology", response.Title)
	assert.Equal(t, "2024-05-01T14:30:00", response.StartDateTime)
	assert.Equal(t, "2024-05-01T15:30:00", response.EndDateTime)
}

func TestScheduleEventCalendarRejection(t *testing.T) {
	calendar := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "error", "message": "time slot conflict"}`))
	}))
	defer calendar.Close()

	router, handler := newTestRouter(t, &stubProvider{}, calendar.URL)
	sess := handler.Sessions.Create("text", extractor.Record{
		Date:     strPtr("2024-05-01"),
		Time:     strPtr("14:30"),
		Location: strPtr("City Hospital"),
	}, false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+sess.ID+"/schedule", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "time slot conflict")
}

func TestScheduleEventCalendarUnavailable(t *testing.T) {
	calendar := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	calendar.Close()

	router, handler := newTestRouter(t, &stubProvider{}, calendar.URL)
	sess := handler.Sessions.Create("text", extractor.Record{
		Date:     strPtr("2024-05-01"),
		Time:     strPtr("14:30"),
		Location: strPtr("City Hospital"),
	}, false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+sess.ID+"/schedule", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestScheduleEventUnknownSession(t *testing.T) {
	router, _ := newTestRouter(t, &stubProvider{}, "")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/nope/schedule", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
