package quizgen

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/skillstream/study-platform/internal/db/repository"
	httperrors "github.com/skillstream/study-platform/pkg/http/errors"
)

// HTTPHandler exposes individual study-aid endpoints.
type HTTPHandler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHTTPHandler(svc *Service, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:    svc,
		logger: logger.With().Str("component", "quizgen_http").Logger(),
	}
}

// GenerateQuiz handles POST /v1/videos/{id}/quiz?lang=&count=
func (h *HTTPHandler) GenerateQuiz(w http.ResponseWriter, r *http.Request) {
	videoID, ok := h.videoID(w, r)
	if !ok {
		return
	}
	lang := queryLang(r)
	count := 0
	if raw := r.URL.Query().Get("count"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 50 {
			count = parsed
		}
	}

	questions, err := h.svc.GenerateQuiz(r.Context(), videoID, lang, count)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.writeJSON(w, map[string]any{
		"video_id":  strconv.FormatInt(videoID, 10),
		"language":  lang,
		"questions": questions,
	})
}

// GenerateSummary handles POST /v1/videos/{id}/summary?lang=
func (h *HTTPHandler) GenerateSummary(w http.ResponseWriter, r *http.Request) {
	videoID, ok := h.videoID(w, r)
	if !ok {
		return
	}

	row, err := h.svc.GenerateSummary(r.Context(), videoID, queryLang(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.writeJSON(w, summaryPayload(row))
}

// GetSummary handles GET /v1/videos/{id}/summary?lang=
func (h *HTTPHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	videoID, ok := h.videoID(w, r)
	if !ok {
		return
	}

	row, err := h.svc.GetSummary(r.Context(), videoID, queryLang(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.writeJSON(w, summaryPayload(row))
}

func summaryPayload(row repository.SummaryRow) map[string]any {
	return map[string]any{
		"video_id":   strconv.FormatInt(row.VideoID, 10),
		"language":   row.Language,
		"model":      row.Model,
		"summary":    row.Summary,
		"updated_at": row.UpdatedAt,
	}
}

func (h *HTTPHandler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, "video or summary not found")
	case errors.Is(err, ErrVideoNotReady):
		httperrors.RespondNotFound(w, httperrors.ErrCodeVideoNotReady, "video is not ready")
	default:
		h.logger.Error().Err(err).Msg("study aid generation failed")
		httperrors.RespondError(w, http.StatusBadGateway, httperrors.ErrCodeGeneratorFailed, "generation failed")
	}
}

func (h *HTTPHandler) videoID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "video id must be an integer")
		return 0, false
	}
	return id, true
}

func queryLang(r *http.Request) string {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return lang
	}
	return "en"
}

func (h *HTTPHandler) writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// The first Encode write already committed the response.
		h.logger.Error().Err(err).Msg("response encoding failed")
	}
}
