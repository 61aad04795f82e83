package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bpamb/escala/pkg/core/calendar"
	"github.com/bpamb/escala/pkg/core/rotation"
	"github.com/bpamb/escala/pkg/core/services"
	"github.com/bpamb/escala/pkg/core/snapshot"
	"github.com/bpamb/escala/pkg/export"
)

// Handler serves the roster engine over HTTP
type Handler struct {
	engine   *services.Engine
	validate *validator.Validate
	logger   *zap.Logger
}

func NewHandler(engine *services.Engine, logger *zap.Logger) *Handler {
	return &Handler{
		engine:   engine,
		validate: validator.New(),
		logger:   logger,
	}
}

// ListUnits returns the rotation table
func (h *Handler) ListUnits(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Units())
}

// GetTeam resolves the team on duty: GET /api/units/{unit}/team?date=2026-01-02
func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	date, err := calendar.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		h.fail(w, "Invalid date", err)
		return
	}

	a, err := h.engine.ResolveTeam(r.Context(), date, chi.URLParam(r, "unit"))
	if err != nil {
		h.fail(w, "Failed to resolve team", err)
		return
	}

	writeJSON(w, http.StatusOK, TeamDTO{
		Date:       calendar.FormatDate(date),
		Unit:       a.Unit,
		Team:       a.Team,
		Overridden: a.Overridden,
		Reason:     a.Reason,
	})
}

// PutRotationStart sets the January 1 team of a unit for a year
func (h *Handler) PutRotationStart(w http.ResponseWriter, r *http.Request) {
	var req RotationStartRequest
	if !h.decode(w, r, &req) {
		return
	}

	start, err := h.engine.SaveRotationStart(r.Context(), chi.URLParam(r, "unit"), req.Year, req.Team)
	if err != nil && start == nil {
		h.fail(w, "Failed to save rotation start", err)
		return
	}
	if err != nil {
		h.logger.Warn("Rotation start saved without refresh", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, start)
}

// GetDay returns every unit's roster for a date
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	date, err := calendar.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		h.fail(w, "Invalid date", err)
		return
	}

	day, err := h.engine.AssembleDay(r.Context(), date)
	if err != nil {
		h.fail(w, "Failed to assemble day", err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

// GetMonth returns one day roster per day of the month
func (h *Handler) GetMonth(w http.ResponseWriter, r *http.Request) {
	year, month, err := yearMonth(r)
	if err != nil {
		h.fail(w, "Invalid month", err)
		return
	}

	days, err := h.engine.AssembleMonth(r.Context(), year, month)
	if err != nil {
		h.fail(w, "Failed to assemble month", err)
		return
	}
	writeJSON(w, http.StatusOK, days)
}

// ExportMonth downloads the month as an XLSX workbook
func (h *Handler) ExportMonth(w http.ResponseWriter, r *http.Request) {
	year, month, err := yearMonth(r)
	if err != nil {
		h.fail(w, "Invalid month", err)
		return
	}

	// Buffer so a failure can still produce a JSON error
	var buf bytes.Buffer
	if err := services.ExportRoster(r.Context(), h.engine, h.logger, &buf, year, month); err != nil {
		h.fail(w, "Failed to export month", err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(year, month)))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// GetQuota returns the leave-day balance of a month
func (h *Handler) GetQuota(w http.ResponseWriter, r *http.Request) {
	year, month, err := yearMonth(r)
	if err != nil {
		h.fail(w, "Invalid month", err)
		return
	}

	q, err := h.engine.QuotaFor(r.Context(), year, month)
	if err != nil {
		h.fail(w, "Failed to calculate quota", err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// GetStatus resolves a person's availability: GET /api/people/{id}/status?date=2026-01-02
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	date, err := calendar.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		h.fail(w, "Invalid date", err)
		return
	}

	personID := chi.URLParam(r, "id")
	status, err := h.engine.ResolveStatus(r.Context(), personID, date)
	if err != nil {
		h.fail(w, "Failed to resolve status", err)
		return
	}

	writeJSON(w, http.StatusOK, StatusDTO{
		PersonID: personID,
		Date:     calendar.FormatDate(date),
		Status:   status,
	})
}

func (h *Handler) GetAdmin(w http.ResponseWriter, r *http.Request) {
	date, err := calendar.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		h.fail(w, "Invalid date", err)
		return
	}

	a, err := h.engine.AdminDay(r.Context(), date)
	if err != nil {
		h.fail(w, "Failed to resolve administrative team", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// PutAdminOverride assigns or clears the administrative team of a date
func (h *Handler) PutAdminOverride(w http.ResponseWriter, r *http.Request) {
	var req AdminOverrideRequest
	if !h.decode(w, r, &req) {
		return
	}

	dateParam := chi.URLParam(r, "date")
	if err := h.engine.SetAdminOverride(r.Context(), dateParam, req.Team); err != nil {
		h.fail(w, "Failed to save administrative override", err)
		return
	}

	date, _ := calendar.ParseDate(dateParam)
	a, err := h.engine.AdminDay(r.Context(), date)
	if err != nil {
		h.fail(w, "Failed to resolve administrative team", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// PutTeamOverride upserts a manual team assignment for (date, unit)
func (h *Handler) PutTeamOverride(w http.ResponseWriter, r *http.Request) {
	var req services.TeamOverrideInput
	if !h.decode(w, r, &req) {
		return
	}

	override, err := h.engine.SaveTeamOverride(r.Context(), req)
	if err != nil && override == nil {
		h.fail(w, "Failed to save team override", err)
		return
	}
	if err != nil {
		// Saved, but clients will see it only after the next refresh
		h.logger.Warn("Team override saved without refresh", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, override)
}

func (h *Handler) AddVolunteer(w http.ResponseWriter, r *http.Request) {
	var req services.VolunteerInput
	if !h.decode(w, r, &req) {
		return
	}

	entry, err := h.engine.AddVolunteer(r.Context(), req)
	if err != nil {
		h.fail(w, "Failed to register volunteer", err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *Handler) ListVolunteers(w http.ResponseWriter, r *http.Request) {
	entries, err := h.engine.ListVolunteers(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		h.fail(w, "Failed to list volunteers", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) RemoveVolunteer(w http.ResponseWriter, r *http.Request) {
	err := h.engine.RemoveVolunteer(r.Context(), chi.URLParam(r, "date"), chi.URLParam(r, "personId"))
	if err != nil {
		h.fail(w, "Failed to remove volunteer", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Refresh refetches every loaded snapshot
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Refresh(r.Context()); err != nil {
		h.fail(w, "Failed to refresh snapshot", err)
		return
	}
	h.GetSnapshot(w, r)
}

func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SnapshotDTO{
		Version:   h.engine.SnapshotVersion(),
		Snapshots: h.engine.SnapshotInfo(),
	})
}

// SnapshotEvents streams the snapshot version as server-sent events until the client disconnects
func (h *Handler) SnapshotEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming unsupported", nil)
		return
	}

	versions, unsubscribe := h.engine.SubscribeSnapshots()
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "event: version\ndata: %d\n\n", h.engine.SnapshotVersion())
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case v, ok := <-versions:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: version\ndata: %d\n\n", v)
			flusher.Flush()
		}
	}
}

// decode reads and validates a JSON body, writing a 400 on failure
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err)
		return false
	}
	return true
}

// fail writes err with the status matching its sentinel
func (h *Handler) fail(w http.ResponseWriter, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(message, zap.Error(err))
	}
	writeError(w, status, message, err)
}

func statusFor(err error) int {
	var gatherErr *snapshot.GatherError
	switch {
	case errors.Is(err, calendar.ErrInvalidDate),
		errors.Is(err, services.ErrInvalidOverride),
		errors.Is(err, errBadParam):
		return http.StatusBadRequest
	case errors.Is(err, rotation.ErrUnknownUnit):
		return http.StatusNotFound
	case errors.Is(err, snapshot.ErrNotLoaded), errors.As(err, &gatherErr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

var errBadParam = errors.New("invalid path parameter")

func yearMonth(r *http.Request) (int, time.Month, error) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1 {
		return 0, 0, fmt.Errorf("%w: year %q", errBadParam, chi.URLParam(r, "year"))
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("%w: month %q", errBadParam, chi.URLParam(r, "month"))
	}
	return year, time.Month(month), nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
