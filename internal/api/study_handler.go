package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/karuta-app/karuta-api/internal/api/middleware"
	"github.com/karuta-app/karuta-api/internal/api/shared"
	"github.com/karuta-app/karuta-api/internal/domain"
	"github.com/karuta-app/karuta-api/internal/domain/srs"
	"github.com/karuta-app/karuta-api/internal/service/study"
)

// StudyHandler handles card selection, grading, counts and forecast requests.
type StudyHandler struct {
	study          *study.Service
	forecastWindow int
	validator      *validator.Validate
}

// NewStudyHandler creates a new StudyHandler with the given dependencies.
// forecastWindowDays is the window used when a forecast request does not
// carry a days parameter; zero or less falls back to the built-in default.
func NewStudyHandler(studyService *study.Service, forecastWindowDays int) *StudyHandler {
	if studyService == nil {
		panic("studyService cannot be nil")
	}
	if forecastWindowDays <= 0 {
		forecastWindowDays = study.DefaultForecastWindow
	}
	return &StudyHandler{
		study:          studyService,
		forecastWindow: forecastWindowDays,
		validator:      validator.New(),
	}
}

// deckFromPath extracts and parses the {deck} path parameter. On failure it
// writes a 400 response and reports false.
func deckFromPath(w http.ResponseWriter, r *http.Request) (domain.DeckType, bool) {
	deckType, err := domain.ParseDeckType(chi.URLParam(r, "deck"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return "", false
	}
	return deckType, true
}

// GetCards handles GET /decks/{deck}/cards. The optional mode query parameter
// restricts selection to due-only or new-only.
func (h *StudyHandler) GetCards(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.GetSubject(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User identity not found")
		return
	}

	deckType, ok := deckFromPath(w, r)
	if !ok {
		return
	}

	mode := study.Mode(r.URL.Query().Get("mode"))

	result, err := h.study.SelectCards(r.Context(), subject, deckType, mode)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CardsResponse{
		Cards:   result.Cards,
		Message: result.Message,
	})
}

// Practice handles POST /decks/{deck}/practice: commits one graded review
// and returns the updated schedule.
func (h *StudyHandler) Practice(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.GetSubject(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User identity not found")
		return
	}

	deckType, ok := deckFromPath(w, r)
	if !ok {
		return
	}

	var req PracticeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	record, err := h.study.Practice(r.Context(), subject, deckType, req.Front, srs.Grade(req.Grade))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, PracticeResponse{
		Front:      record.Front,
		Interval:   record.Interval,
		Repetition: record.Repetition,
		EaseFactor: record.EaseFactor,
		DueDate:    record.DueDate.Format(time.RFC3339),
	})
}

// Counts handles GET /decks/{deck}/counts for the deck picker.
func (h *StudyHandler) Counts(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.GetSubject(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User identity not found")
		return
	}

	deckType, ok := deckFromPath(w, r)
	if !ok {
		return
	}

	counts, err := h.study.CardCounts(r.Context(), subject, deckType)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CountsResponse{
		Deck: string(deckType),
		New:  counts.New,
		Due:  counts.Due,
	})
}

// Forecast handles GET /forecast. The optional days query parameter widens
// or narrows the projection window.
func (h *StudyHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.GetSubject(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User identity not found")
		return
	}

	windowDays := h.forecastWindow
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		windowDays = parsed
	}

	forecast, err := h.study.ForecastDue(r.Context(), subject, windowDays)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ForecastResponse{
		Days:     forecast.Days,
		MaxCount: forecast.MaxCount,
	})
}
