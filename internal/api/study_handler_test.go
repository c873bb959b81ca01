package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karuta-app/karuta-api/internal/api/shared"
	"github.com/karuta-app/karuta-api/internal/cache"
	"github.com/karuta-app/karuta-api/internal/domain"
	"github.com/karuta-app/karuta-api/internal/domain/srs"
	"github.com/karuta-app/karuta-api/internal/identity"
	"github.com/karuta-app/karuta-api/internal/session"
	"github.com/karuta-app/karuta-api/internal/service/study"
	"github.com/karuta-app/karuta-api/internal/store"
)

// testForecastWindow is the configured default forecast window for the test
// router, deliberately different from the built-in default.
const testForecastWindow = 5

// fixedClock returns a constant time for deterministic scheduling.
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

// stubRecordStore is an in-memory ReviewRecordStore for handler tests.
type stubRecordStore struct {
	records []*domain.ReviewRecord
}

func (s *stubRecordStore) ListByUserDeck(_ context.Context, userID int64, deckType domain.DeckType) ([]*domain.ReviewRecord, error) {
	var out []*domain.ReviewRecord
	for _, r := range s.records {
		if r.UserID == userID && r.DeckType == deckType {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubRecordStore) Upsert(_ context.Context, record *domain.ReviewRecord) error {
	for i, r := range s.records {
		if r.UserID == record.UserID && r.DeckType == record.DeckType && r.Front == record.Front {
			s.records[i] = record
			return nil
		}
	}
	s.records = append(s.records, record)
	return nil
}

func (s *stubRecordStore) WithTx(_ *sql.Tx) store.ReviewRecordStore { return s }

var _ store.ReviewRecordStore = (*stubRecordStore)(nil)

// stubTemplateStore serves a fixed set of card templates.
type stubTemplateStore struct {
	templates map[domain.DeckType][]*domain.CardTemplate
}

func (s *stubTemplateStore) ListByDeck(_ context.Context, deckType domain.DeckType) ([]*domain.CardTemplate, error) {
	return s.templates[deckType], nil
}

// newTestRouter wires a real study service over in-memory stores and mounts
// the study handler the same way the production router does. The subject
// middleware stands in for JWT authentication.
func newTestRouter(t *testing.T, subject string, records *stubRecordStore) http.Handler {
	t.Helper()

	clock := fixedClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	templates := &stubTemplateStore{
		templates: map[domain.DeckType][]*domain.CardTemplate{
			domain.DeckHiragana: {
				{DeckType: domain.DeckHiragana, Front: "あ", Back: "a", Position: 0},
				{DeckType: domain.DeckHiragana, Front: "い", Back: "i", Position: 1},
				{DeckType: domain.DeckHiragana, Front: "う", Back: "u", Position: 2},
				{DeckType: domain.DeckHiragana, Front: "え", Back: "e", Position: 3},
			},
		},
	}

	svc := study.NewService(
		records,
		templates,
		cache.New(cache.Options{Clock: clock.Now}),
		session.NewManager(clock, nil, nil),
		identity.HashResolver{},
		srs.NewDefaultService(),
		nil,
		clock,
		nil,
	)

	handler := NewStudyHandler(svc, testForecastWindow)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if subject != "" {
				ctx := context.WithValue(req.Context(), shared.SubjectContextKey, subject)
				req = req.WithContext(ctx)
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/decks/{deck}/cards", handler.GetCards)
	r.Post("/decks/{deck}/practice", handler.Practice)
	r.Get("/decks/{deck}/counts", handler.Counts)
	r.Get("/forecast", handler.Forecast)
	return r
}

func TestGetCards(t *testing.T) {
	router := newTestRouter(t, "auth0|rin", &stubRecordStore{})

	req := httptest.NewRequest("GET", "/decks/hiragana/cards", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp CardsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	// Fresh user: the daily new-card limit admits three cards in source order.
	require.Len(t, resp.Cards, 3)
	assert.Equal(t, "あ", resp.Cards[0].Front)
	assert.Equal(t, "い", resp.Cards[1].Front)
	assert.Equal(t, "う", resp.Cards[2].Front)
	assert.True(t, resp.Cards[0].New)
	assert.Empty(t, resp.Message)
}

func TestGetCardsUnknownDeck(t *testing.T) {
	router := newTestRouter(t, "auth0|rin", &stubRecordStore{})

	req := httptest.NewRequest("GET", "/decks/klingon/cards", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Unknown deck", resp.Error)
}

func TestGetCardsInvalidMode(t *testing.T) {
	router := newTestRouter(t, "auth0|rin", &stubRecordStore{})

	req := httptest.NewRequest("GET", "/decks/hiragana/cards?mode=random", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetCardsMissingSubject(t *testing.T) {
	router := newTestRouter(t, "", &stubRecordStore{})

	req := httptest.NewRequest("GET", "/decks/hiragana/cards", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestPractice(t *testing.T) {
	records := &stubRecordStore{}
	router := newTestRouter(t, "auth0|rin", records)

	body, err := json.Marshal(PracticeRequest{Front: "あ", Grade: 4})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/decks/hiragana/practice", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp PracticeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "あ", resp.Front)
	assert.Equal(t, 1, resp.Interval)
	assert.Equal(t, 1, resp.Repetition)
	assert.InDelta(t, 2.5, resp.EaseFactor, 0.001)

	// The grade was committed to the backing store.
	require.Len(t, records.records, 1)
	assert.Equal(t, "あ", records.records[0].Front)
}

func TestPracticeValidation(t *testing.T) {
	router := newTestRouter(t, "auth0|rin", &stubRecordStore{})

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed JSON", body: `{`},
		{name: "missing front", body: `{"grade": 4}`},
		{name: "grade out of range", body: `{"front": "あ", "grade": 6}`},
		{name: "grade zero", body: `{"front": "あ", "grade": 0}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/decks/hiragana/practice", bytes.NewReader([]byte(tc.body)))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestCounts(t *testing.T) {
	router := newTestRouter(t, "auth0|rin", &stubRecordStore{})

	req := httptest.NewRequest("GET", "/decks/hiragana/counts", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp CountsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "hiragana", resp.Deck)
	assert.Equal(t, 4, resp.New)
	assert.Equal(t, 0, resp.Due)
}

func TestForecast(t *testing.T) {
	router := newTestRouter(t, "auth0|rin", &stubRecordStore{})

	req := httptest.NewRequest("GET", "/forecast?days=7", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp ForecastResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Len(t, resp.Days, 7)
	assert.Equal(t, 0, resp.MaxCount)
}

func TestForecastDefaultWindow(t *testing.T) {
	router := newTestRouter(t, "auth0|rin", &stubRecordStore{})

	// No days parameter: the handler's configured window applies.
	req := httptest.NewRequest("GET", "/forecast", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp ForecastResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Len(t, resp.Days, testForecastWindow)
}

func TestForecastBadWindow(t *testing.T) {
	router := newTestRouter(t, "auth0|rin", &stubRecordStore{})

	for _, days := range []string{"0", "-3", "soon"} {
		req := httptest.NewRequest("GET", "/forecast?days="+days, nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code, "days=%s", days)
	}
}
