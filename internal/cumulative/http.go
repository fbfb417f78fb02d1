package cumulative

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/skillstream/study-platform/internal/db/repository"
	"github.com/skillstream/study-platform/internal/series"
	httperrors "github.com/skillstream/study-platform/pkg/http/errors"
)

const defaultLanguage = "en"

// HTTPHandler exposes the cumulative quiz REST endpoints.
type HTTPHandler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHTTPHandler(svc *Service, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:    svc,
		logger: logger.With().Str("component", "cumulative_http").Logger(),
	}
}

// Generate handles POST /v1/videos/{id}/cumulative-quiz?lang=&force=
func (h *HTTPHandler) Generate(w http.ResponseWriter, r *http.Request) {
	videoID, ok := pathVideoID(w, r)
	if !ok {
		return
	}
	lang := language(r)
	force := r.URL.Query().Get("force") == "true"

	quiz, err := h.svc.Generate(r.Context(), videoID, lang, force)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, quiz)
}

// Eligibility handles GET /v1/videos/{id}/cumulative-quiz/eligibility?lang=
func (h *HTTPHandler) Eligibility(w http.ResponseWriter, r *http.Request) {
	videoID, ok := pathVideoID(w, r)
	if !ok {
		return
	}

	result, err := h.svc.CheckEligibility(r.Context(), videoID, language(r))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// GetCached handles GET /v1/videos/{id}/cumulative-quiz?lang=
func (h *HTTPHandler) GetCached(w http.ResponseWriter, r *http.Request) {
	videoID, ok := pathVideoID(w, r)
	if !ok {
		return
	}

	quiz, err := h.svc.GetCached(r.Context(), videoID, language(r))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if quiz == nil {
		httperrors.RespondNotFound(w, httperrors.ErrCodeQuizNotFound, "no cumulative quiz stored for this video")
		return
	}
	h.writeJSON(w, http.StatusOK, quiz)
}

// Delete handles DELETE /v1/videos/{id}/cumulative-quiz?lang= (admin only).
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	videoID, ok := pathVideoID(w, r)
	if !ok {
		return
	}
	lang := language(r)

	if err := h.svc.Delete(r.Context(), videoID, lang); err != nil {
		h.logger.Error().Err(err).Int64("video_id", videoID).Msg("cumulative quiz delete failed")
		httperrors.RespondInternalError(w, "failed to delete cumulative quiz")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

// DeleteSeries handles DELETE /v1/series/{id}/cumulative-quizzes (admin only).
func (h *HTTPHandler) DeleteSeries(w http.ResponseWriter, r *http.Request) {
	seriesID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "series id must be an integer")
		return
	}

	deleted, err := h.svc.DeleteSeries(r.Context(), seriesID)
	if err != nil {
		h.logger.Error().Err(err).Int64("series_id", seriesID).Msg("bulk cumulative quiz delete failed")
		httperrors.RespondInternalError(w, "failed to delete cumulative quizzes")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"deleted": deleted})
}

func (h *HTTPHandler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrDisabled):
		httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeFeatureNotAvailable, "cumulative quizzes are disabled")
	case errors.Is(err, repository.ErrNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeVideoNotFound, "video or series not found")
	case errors.Is(err, series.ErrNotPositioned):
		httperrors.RespondNotFound(w, httperrors.ErrCodeVideoNotFound, "video is not positioned in its series")
	case errors.Is(err, ErrVideoNotReady):
		httperrors.RespondNotFound(w, httperrors.ErrCodeVideoNotReady, "video is not ready")
	case errors.Is(err, ErrNotInSeries):
		httperrors.RespondConflict(w, httperrors.ErrCodeNotInSeries, "video is not part of a series")
	case errors.Is(err, ErrNoMembers):
		httperrors.RespondConflict(w, httperrors.ErrCodeNoMembers, "no series members to aggregate")
	default:
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("cumulative quiz request failed")
		httperrors.RespondInternalError(w, "internal error")
	}
}

func pathVideoID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "video id must be an integer")
		return 0, false
	}
	return id, true
}

func language(r *http.Request) string {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return lang
	}
	return defaultLanguage
}

func (h *HTTPHandler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// The status line is already committed; all we can do is record it.
		h.logger.Error().Err(err).Msg("response encoding failed")
	}
}
