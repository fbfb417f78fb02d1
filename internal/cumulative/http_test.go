package cumulative

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMux(svc *Service) *http.ServeMux {
	h := NewHTTPHandler(svc, zerolog.Nop())
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/videos/{id}/cumulative-quiz", h.Generate)
	mux.HandleFunc("GET /v1/videos/{id}/cumulative-quiz", h.GetCached)
	mux.HandleFunc("GET /v1/videos/{id}/cumulative-quiz/eligibility", h.Eligibility)
	mux.HandleFunc("DELETE /v1/videos/{id}/cumulative-quiz", h.Delete)
	return mux
}

func eligibleFixture() (*stubVideos, *stubQuizzes) {
	videos := newStubVideos(
		seriesVideo(1, 7, 1, testBase),
		seriesVideo(2, 7, 2, testBase),
	)
	quizzes := newStubQuizzes()
	quizzes.put(1, "en", `[{"question":"a","type":"true_false","correctAnswer":true}]`)
	quizzes.put(2, "en", `[{"question":"b","type":"true_false","correctAnswer":false}]`)
	return videos, quizzes
}

func TestHTTPGenerateAndRead(t *testing.T) {
	videos, quizzes := eligibleFixture()
	svc := newTestService(videos, quizzes, newMemRecords(), newMemQuizCache(), ServiceOptions{Enabled: true})
	mux := newTestMux(svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/videos/2/cumulative-quiz?lang=en", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var quiz Quiz
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quiz))
	assert.Equal(t, int64(2), quiz.VideoID)
	assert.Equal(t, 2, quiz.VideoCount)
	assert.Len(t, quiz.Questions, 2)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/videos/2/cumulative-quiz?lang=en", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHTTPEligibility(t *testing.T) {
	videos, quizzes := eligibleFixture()
	svc := newTestService(videos, quizzes, newMemRecords(), newMemQuizCache(), ServiceOptions{Enabled: true})
	mux := newTestMux(svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/videos/2/cumulative-quiz/eligibility?lang=en", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var result EligibilityResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Eligible)
	assert.Equal(t, 2, result.Position)

	// Ineligibility is a 200 with a reason, never an error status.
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/videos/1/cumulative-quiz/eligibility?lang=en", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Eligible)
	assert.Equal(t, ReasonFirstInSeries, result.Reason)
}

func TestHTTPErrorMapping(t *testing.T) {
	videos, quizzes := eligibleFixture()
	svc := newTestService(videos, quizzes, newMemRecords(), newMemQuizCache(), ServiceOptions{Enabled: true})
	mux := newTestMux(svc)

	// Unknown video -> 404
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/videos/404/cumulative-quiz", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Bad id -> 400
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/videos/abc/cumulative-quiz", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// No stored quiz -> 404 on read
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/videos/2/cumulative-quiz?lang=fr", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHTTPDisabledFeature(t *testing.T) {
	videos, quizzes := eligibleFixture()
	svc := newTestService(videos, quizzes, newMemRecords(), newMemQuizCache(), ServiceOptions{Enabled: false})
	mux := newTestMux(svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/videos/2/cumulative-quiz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestWriteJSONEncodeFailureKeepsStatus(t *testing.T) {
	h := NewHTTPHandler(nil, zerolog.Nop())

	// NaN is not encodable; the committed status must stand and no error
	// text may leak into the body.
	rec := httptest.NewRecorder()
	h.writeJSON(rec, http.StatusOK, math.NaN())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestHTTPDelete(t *testing.T) {
	videos, quizzes := eligibleFixture()
	records := newMemRecords()
	svc := newTestService(videos, quizzes, records, newMemQuizCache(), ServiceOptions{Enabled: true})
	mux := newTestMux(svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/videos/2/cumulative-quiz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/videos/2/cumulative-quiz?lang=en", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/videos/2/cumulative-quiz?lang=en", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
