// handlers.go - HTTP handlers for the document scan and scheduling endpoints

package api

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hospitex/medscan/configs"
	"github.com/hospitex/medscan/internal/ai"
	"github.com/hospitex/medscan/internal/common"
	"github.com/hospitex/medscan/internal/extractor"
	"github.com/hospitex/medscan/internal/processor"
	"github.com/hospitex/medscan/internal/scheduler"
	"github.com/hospitex/medscan/internal/session"
	"github.com/hospitex/medscan/internal/storage"
)

var allowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// Handler bundles the pipeline components behind the HTTP surface
type Handler struct {
	Provider  ai.Provider
	Extractor *extractor.Extractor
	Scheduler *scheduler.Scheduler
	Sessions  *session.Store
}

// NewHandler wires the pipeline components into one handler set
func NewHandler(provider ai.Provider, ext *extractor.Extractor, sched *scheduler.Scheduler, sessions *session.Store) *Handler {
	return &Handler{
		Provider:  provider,
		Extractor: ext,
		Scheduler: sched,
		Sessions:  sessions,
	}
}

// ScanDocument runs the full pipeline on an uploaded photo: normalize the
// image, recognize its text, extract appointment fields, and open a session
// holding the result for later edits and scheduling.
func (h *Handler) ScanDocument(c *gin.Context) {
	reqCtx := common.NewRequestContext()
	debug := c.Query("debug") == "true"

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "No file uploaded",
			"details": err.Error(),
		})
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	_, ok := allowedExtensions[ext]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Unsupported file type",
			"details": "only .jpg, .jpeg and .png files are accepted",
		})
		return
	}

	// Spool to disk under a generated name so concurrent uploads with the
	// same filename never collide
	tempPath := filepath.Join(configs.UPLOAD_DIR, uuid.New().String()+ext)
	if err := c.SaveUploadedFile(fileHeader, tempPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to save uploaded file",
			"details": err.Error(),
		})
		return
	}
	defer os.Remove(tempPath)

	raw, err := os.ReadFile(tempPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to read uploaded file",
			"details": err.Error(),
		})
		return
	}

	reqCtx.StartStep("normalize_image")
	normalized, err := processor.Normalize(raw)
	if err != nil {
		reqCtx.EndStep("failed", err)
		var decodeErr *processor.DecodeError
		if errors.As(err, &decodeErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":      "Could not decode image",
				"details":    err.Error(),
				"request_id": reqCtx.RequestID,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Image processing failed",
			"details":    err.Error(),
			"request_id": reqCtx.RequestID,
		})
		return
	}
	reqCtx.EndStep("success", nil)

	// Normalization always re-encodes to JPEG
	reqCtx.StartStep("recognize_text")
	recognizedText, err := h.Provider.RecognizeText(c.Request.Context(), normalized, "image/jpeg", reqCtx)
	if err != nil {
		reqCtx.EndStep("failed", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":      "Text recognition failed",
			"details":    err.Error(),
			"request_id": reqCtx.RequestID,
		})
		return
	}
	reqCtx.EndStep("success", nil)

	reqCtx.StartStep("extract_fields")
	result, err := h.Extractor.Extract(c.Request.Context(), recognizedText, reqCtx)
	if err != nil {
		reqCtx.EndStep("failed", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":      "Field extraction failed",
			"details":    err.Error(),
			"request_id": reqCtx.RequestID,
		})
		return
	}
	reqCtx.EndStep("success", nil)

	sess := h.Sessions.Create(recognizedText, result.Record, result.FallbackUsed)
	reqCtx.LogInfo("Scan complete: session=%s found=%d/5 fallback=%v elapsed=%dms",
		sess.ID, result.Record.FoundCount(), result.FallbackUsed, reqCtx.ElapsedMS())

	if storage.Enabled() {
		if err := storage.SaveScanHistory(storage.ScanHistory{
			RequestID:      reqCtx.RequestID,
			SessionID:      sess.ID,
			Filename:       fileHeader.Filename,
			Provider:       h.Provider.ProviderName(),
			RecognizedText: recognizedText,
			Record:         result.Record,
			FallbackUsed:   result.FallbackUsed,
			DurationMS:     reqCtx.ElapsedMS(),
		}); err != nil {
			reqCtx.LogWarning("Failed to save scan history: %v", err)
		}
	}

	response := gin.H{
		"session_id":      sess.ID,
		"recognized_text": recognizedText,
		"record":          result.Record,
		"fallback_used":   result.FallbackUsed,
		"request_id":      reqCtx.RequestID,
	}
	if debug {
		response["raw_extraction_response"] = result.RawResponse
		response["steps"] = reqCtx.Steps
	}
	c.JSON(http.StatusOK, response)
}

// GetSession returns the current state of a scan session
func (h *Handler) GetSession(c *gin.Context) {
	sess, err := h.Sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Session not found",
		})
		return
	}
	c.JSON(http.StatusOK, sess)
}

// UpdateFields applies user corrections to the extracted record
func (h *Handler) UpdateFields(c *gin.Context) {
	var edits session.FieldEdits
	if err := c.ShouldBindJSON(&edits); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	sess, err := h.Sessions.UpdateFields(c.Param("id"), edits)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Session not found",
		})
		return
	}
	c.JSON(http.StatusOK, sess)
}

// DeleteSession ends the interaction and discards its state
func (h *Handler) DeleteSession(c *gin.Context) {
	h.Sessions.Delete(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// ScheduleEvent books a calendar event from the session's current record.
// Date, time and location must be present; department and doctor only shape
// the event title.
func (h *Handler) ScheduleEvent(c *gin.Context) {
	reqCtx := common.NewRequestContext()

	sess, err := h.Sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Session not found",
		})
		return
	}

	rec := sess.Record
	missing := missingRequiredFields(rec)
	if len(missing) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":          "Missing required fields",
			"missing_fields": missing,
		})
		return
	}

	req := scheduler.Request{
		Title:    scheduler.BuildTitle(rec.Department, rec.Doctor),
		Date:     *rec.Date,
		Time:     *rec.Time,
		Location: *rec.Location,
	}

	reqCtx.StartStep("schedule_event")
	result, err := h.Scheduler.Schedule(c.Request.Context(), req, reqCtx)
	if err != nil {
		reqCtx.EndStep("failed", err)

		var invalidTime *scheduler.InvalidTimeError
		var appErr *scheduler.ApplicationError
		switch {
		case errors.As(err, &invalidTime):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":      "Invalid date or time",
				"details":    err.Error(),
				"request_id": reqCtx.RequestID,
			})
		case errors.As(err, &appErr):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":      "Calendar rejected the event",
				"message":    appErr.Message,
				"request_id": reqCtx.RequestID,
			})
		default:
			// TransportError and ResponseDecodeError both mean the
			// calendar endpoint could not give a usable answer
			c.JSON(http.StatusBadGateway, gin.H{
				"error":      "Calendar service unavailable",
				"details":    err.Error(),
				"request_id": reqCtx.RequestID,
			})
		}
		return
	}
	reqCtx.EndStep("success", nil)

	if storage.Enabled() {
		if err := storage.SaveEventHistory(storage.EventHistory{
			RequestID:     reqCtx.RequestID,
			SessionID:     sess.ID,
			EventID:       result.EventID,
			Title:         req.Title,
			Location:      req.Location,
			StartDateTime: result.StartDateTime,
			EndDateTime:   result.EndDateTime,
		}); err != nil {
			reqCtx.LogWarning("Failed to save event history: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"event_id":       result.EventID,
		"title":          req.Title,
		"start_datetime": result.StartDateTime,
		"end_datetime":   result.EndDateTime,
		"request_id":     reqCtx.RequestID,
	})
}

func missingRequiredFields(rec extractor.Record) []string {
	missing := []string{}
	if rec.Date == nil || *rec.Date == "" {
		missing = append(missing, "date")
	}
	if rec.Time == nil || *rec.Time == "" {
		missing = append(missing, "time")
	}
	if rec.Location == nil || *rec.Location == "" {
		missing = append(missing, "location")
	}
	return missing
}
