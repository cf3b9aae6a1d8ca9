package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailyquota/dailyquota/internal/api"
	"github.com/dailyquota/dailyquota/internal/auth"
	"github.com/dailyquota/dailyquota/internal/quota"
)

var fixedNow = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

func setupHandler(t *testing.T, locale string) (*Handler, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	loc, err := time.LoadLocation("Europe/Istanbul")
	require.NoError(t, err)

	reader := quota.NewReader(quota.NewRedisStore(rdb, 0), quota.NewCalendar(loc), quota.Limits{Daily: 5, Monthly: 20})
	svc := NewService(quota.NewEnforcer(reader), reader)
	svc.now = func() time.Time { return fixedNow }

	return NewHandler(svc, NewMessages(locale)), mr
}

func withUser(r *http.Request, userID string) *http.Request {
	ctx := auth.WithUserClaims(r.Context(), &auth.AccessClaims{UserID: userID, Email: userID + "@example.com"})
	return r.WithContext(ctx)
}

func searchRequest(t *testing.T, userID, term string) *http.Request {
	t.Helper()
	body, err := json.Marshal(SearchRequest{Term: term})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	if userID == "" {
		return req
	}
	return withUser(req, userID)
}

func TestHandler_SearchReturnsItemsAndHeaders(t *testing.T) {
	h, _ := setupHandler(t, "tr")

	rec := httptest.NewRecorder()
	h.Search(rec, searchRequest(t, "alice", "golang"))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp SearchResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, []string{"Anahtar kelime 'golang'"}, resp.Items)
	assert.Equal(t, 4, resp.Usage.DayRemaining)
	assert.Equal(t, 19, resp.Usage.MonthRemaining)

	assert.Equal(t, "5", rec.Header().Get(headerLimitDay))
	assert.Equal(t, "4", rec.Header().Get(headerRemainingDay))
	assert.Equal(t, "20", rec.Header().Get(headerLimitMonth))
	assert.Equal(t, "19", rec.Header().Get(headerRemainingMonth))
}

func TestHandler_SixthSearchIsRejected(t *testing.T) {
	h, _ := setupHandler(t, "tr")

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.Search(rec, searchRequest(t, "bob", "term"))
		require.Equal(t, http.StatusOK, rec.Code, "search %d", i+1)
	}

	rec := httptest.NewRecorder()
	h.Search(rec, searchRequest(t, "bob", "term"))

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "0", rec.Header().Get(headerRemainingDay))
	assert.Equal(t, "15", rec.Header().Get(headerRemainingMonth))

	var problem struct {
		api.Problem
		Usage quota.Snapshot `json:"usage"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&problem))
	assert.Equal(t, http.StatusTooManyRequests, problem.Status)
	assert.Equal(t, "DAILY_LIMIT_EXCEEDED", problem.Code)
	assert.Equal(t, "Günlük limitiniz dolmuştur.", problem.Detail)
	assert.Equal(t, 5, problem.Usage.DayUsed)
	assert.Equal(t, 0, problem.Usage.DayRemaining)
}

func TestHandler_RejectionDetailFollowsAcceptLanguage(t *testing.T) {
	h, _ := setupHandler(t, "tr")

	for i := 0; i < 5; i++ {
		h.Search(httptest.NewRecorder(), searchRequest(t, "carol", "term"))
	}

	req := searchRequest(t, "carol", "term")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Your daily limit has been reached.")
}

func TestHandler_SearchRequiresUser(t *testing.T) {
	h, _ := setupHandler(t, "tr")

	rec := httptest.NewRecorder()
	h.Search(rec, searchRequest(t, "", "term"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_SearchValidatesTerm(t *testing.T) {
	h, mr := setupHandler(t, "tr")

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"term":`},
		{"missing term", `{}`},
		{"term too long", `{"term":"` + strings.Repeat("a", 257) + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withUser(httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(tt.body)), "dave")
			rec := httptest.NewRecorder()
			h.Search(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	assert.False(t, mr.Exists("quota:usage:dave"), "invalid requests must not consume quota")
}

func TestHandler_SearchRejectsOversizedBody(t *testing.T) {
	h, mr := setupHandler(t, "tr")

	body := `{"term":"` + strings.Repeat("a", 10<<10) + `"}`
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(body)), "erin")
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.False(t, mr.Exists("quota:usage:erin"), "oversized requests must not consume quota")
}

func TestHandler_StoreDownIsServiceUnavailable(t *testing.T) {
	h, mr := setupHandler(t, "tr")
	mr.Close()

	rec := httptest.NewRecorder()
	h.Search(rec, searchRequest(t, "erin", "term"))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandler_UsageDoesNotConsume(t *testing.T) {
	h, _ := setupHandler(t, "tr")
	h.Search(httptest.NewRecorder(), searchRequest(t, "frank", "term"))

	for i := 0; i < 2; i++ {
		req := withUser(httptest.NewRequest(http.MethodGet, "/api/usage", nil), "frank")
		rec := httptest.NewRecorder()
		h.Usage(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var usage quota.Snapshot
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&usage))
		assert.Equal(t, 1, usage.DayUsed)
		assert.Equal(t, 4, usage.DayRemaining)
		assert.Equal(t, 1, usage.MonthUsed)
		// Istanbul is UTC+3: the local day ends at 21:00 UTC.
		assert.True(t, usage.DayResetAt.Equal(time.Date(2025, time.March, 10, 21, 0, 0, 0, time.UTC)))
		assert.True(t, usage.MonthResetAt.Equal(time.Date(2025, time.March, 31, 21, 0, 0, 0, time.UTC)))
	}
}

func TestService_SearchPropagatesUnauthenticated(t *testing.T) {
	h, _ := setupHandler(t, "tr")

	_, err := h.svc.Search(context.Background(), "", "term")
	assert.ErrorIs(t, err, quota.ErrUnauthenticated)
}
