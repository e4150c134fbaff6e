package router

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"skywage-service/internal/domain/entity"
	"skywage-service/internal/usecase"
	"skywage-service/pkg/logger"
	"skywage-service/pkg/utils"
)

// maxUploadBytes caps a roster file upload.
const maxUploadBytes = 10 << 20

// APIHandler exposes the roster and duty operations over HTTP
type APIHandler struct {
	processor *usecase.UploadProcessor
	duties    *usecase.DutyService
	recalc    *usecase.RecalculationEngine
	logger    logger.Logger
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(
	processor *usecase.UploadProcessor,
	duties *usecase.DutyService,
	recalc *usecase.RecalculationEngine,
	logger logger.Logger,
) *APIHandler {
	return &APIHandler{
		processor: processor,
		duties:    duties,
		recalc:    recalc,
		logger:    logger,
	}
}

// RegisterRoutes attaches the API routes to a mux
func (h *APIHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/uploads", h.handleUpload)
	mux.HandleFunc("/api/uploads/", h.handleUploadStatus)
	mux.HandleFunc("/api/months", h.handleMonthDelete)
	mux.HandleFunc("/api/months/check", h.handleMonthCheck)
	mux.HandleFunc("/api/recalculate", h.handleRecalculate)
	mux.HandleFunc("/api/duties", h.handleDuties)
	mux.HandleFunc("/api/audit", h.handleAuditTrail)
}

// handleUpload accepts a multipart roster file and processes it synchronously
func (h *APIHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("parsing form: %v", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "missing roster file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("reading file: %v", err))
		return
	}

	month, year, ok := h.monthYear(w, r.FormValue("month"), r.FormValue("year"))
	if !ok {
		return
	}
	userID := r.FormValue("userId")
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, "userId is required")
		return
	}
	position := entity.Position(r.FormValue("position"))
	if position != entity.PositionCCM && position != entity.PositionSCCM {
		h.writeError(w, http.StatusBadRequest, "position must be CCM or SCCM")
		return
	}
	replace, _ := strconv.ParseBool(r.FormValue("replace"))

	upload := &entity.RosterUpload{
		UserID:      userID,
		Filename:    header.Filename,
		MimeHint:    header.Header.Get("Content-Type"),
		Data:        data,
		Position:    position,
		TargetMonth: month,
		TargetYear:  year,
		Replace:     replace,
	}

	result, err := h.processor.SubmitUpload(r.Context(), upload)
	if err != nil {
		h.logger.Error("Upload processing failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	status := http.StatusOK
	if result.ReplacementRequired {
		status = http.StatusConflict
	}
	h.writeJSON(w, status, result)
}

// handleUploadStatus reports how far an archived upload got through the
// pipeline, by upload id
func (h *APIHandler) handleUploadStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	uploadID := strings.TrimPrefix(r.URL.Path, "/api/uploads/")
	if uploadID == "" || strings.Contains(uploadID, "/") {
		h.writeError(w, http.StatusBadRequest, "uploadId is required")
		return
	}

	status, err := h.processor.GetUploadStatus(r.Context(), uploadID)
	if err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, status)
}

// handleMonthDelete wipes a month's duties, rest periods and totals
func (h *APIHandler) handleMonthDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	month, year, ok := h.monthYear(w, q.Get("month"), q.Get("year"))
	if !ok {
		return
	}
	userID := q.Get("userId")
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	deleted, err := h.duties.DeleteMonth(r.Context(), userID, month, year, entity.Position(q.Get("position")))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

// handleAuditTrail lists recent audit entries for one crew member
func (h *APIHandler) handleAuditTrail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	userID := q.Get("userId")
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, "userId is required")
		return
	}
	limit, _ := strconv.Atoi(q.Get("limit"))

	entries, err := h.duties.AuditTrail(r.Context(), userID, limit)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, entries)
}

// handleMonthCheck reports whether a month already has duties
func (h *APIHandler) handleMonthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	month, year, ok := h.monthYear(w, q.Get("month"), q.Get("year"))
	if !ok {
		return
	}
	userID := q.Get("userId")
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	check, err := h.processor.CheckForExistingData(r.Context(), userID, month, year)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, check)
}

// handleRecalculate recomputes the requested months
func (h *APIHandler) handleRecalculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		UserID   string             `json:"userId"`
		Position entity.Position    `json:"position"`
		Months   []usecase.MonthKey `json:"months"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("decoding request: %v", err))
		return
	}
	if req.UserID == "" || len(req.Months) == 0 {
		h.writeError(w, http.StatusBadRequest, "userId and months are required")
		return
	}

	result := h.recalc.RecalculateMonths(r.Context(), req.UserID, req.Months, req.Position)
	h.writeJSON(w, http.StatusOK, result)
}

// handleDuties covers manual entry (POST), edit (PUT) and bulk delete (DELETE)
func (h *APIHandler) handleDuties(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createDuty(w, r)
	case http.MethodPut:
		h.updateDuty(w, r)
	case http.MethodDelete:
		h.bulkDeleteDuties(w, r)
	default:
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type dutyRequest struct {
	ID            string          `json:"id,omitempty"`
	UserID        string          `json:"userId"`
	Date          string          `json:"date"` // DD/MM/YYYY
	FlightNumbers []string        `json:"flightNumbers"`
	Sectors       []string        `json:"sectors"`
	DutyType      entity.DutyType `json:"dutyType"`
	ReportTime    string          `json:"reportTime"`
	DebriefTime   string          `json:"debriefTime"`
	Position      entity.Position `json:"position"`
	Month         int             `json:"month"`
	Year          int             `json:"year"`
}

func (h *APIHandler) createDuty(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeDuty(w, r)
	if !ok {
		return
	}
	duty, err := h.duties.Create(r.Context(), input.ManualDutyInput)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusCreated, duty)
}

func (h *APIHandler) updateDuty(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeDuty(w, r)
	if !ok {
		return
	}
	if input.ID == "" {
		h.writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	duty, err := h.duties.Update(r.Context(), input.ID, input.ManualDutyInput)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, duty)
}

func (h *APIHandler) bulkDeleteDuties(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   string          `json:"userId"`
		Position entity.Position `json:"position"`
		IDs      []string        `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("decoding request: %v", err))
		return
	}
	if req.UserID == "" || len(req.IDs) == 0 {
		h.writeError(w, http.StatusBadRequest, "userId and ids are required")
		return
	}

	result := h.duties.BulkDelete(r.Context(), req.UserID, req.IDs, req.Position)
	h.writeJSON(w, http.StatusOK, result)
}

type decodedDuty struct {
	ID string
	usecase.ManualDutyInput
}

func (h *APIHandler) decodeDuty(w http.ResponseWriter, r *http.Request) (decodedDuty, bool) {
	var req dutyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("decoding request: %v", err))
		return decodedDuty{}, false
	}

	date, err := time.Parse(utils.DATE_LAYOUT, req.Date)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("date must be DD/MM/YYYY: %v", err))
		return decodedDuty{}, false
	}

	return decodedDuty{
		ID: req.ID,
		ManualDutyInput: usecase.ManualDutyInput{
			UserID:        req.UserID,
			Date:          date,
			FlightNumbers: req.FlightNumbers,
			Sectors:       req.Sectors,
			DutyType:      req.DutyType,
			ReportTime:    req.ReportTime,
			DebriefTime:   req.DebriefTime,
			Position:      req.Position,
			Month:         req.Month,
			Year:          req.Year,
		},
	}, true
}

func (h *APIHandler) monthYear(w http.ResponseWriter, monthStr, yearStr string) (int, int, bool) {
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		h.writeError(w, http.StatusBadRequest, "month must be 1-12")
		return 0, 0, false
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 2000 {
		h.writeError(w, http.StatusBadRequest, "year is invalid")
		return 0, 0, false
	}
	return month, year, true
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

func (h *APIHandler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
