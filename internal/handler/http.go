package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	gojson "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/romanzh1/skillpath/internal/auth"
	"github.com/romanzh1/skillpath/internal/models"
	"github.com/romanzh1/skillpath/internal/service"
	"github.com/romanzh1/skillpath/pkg/utils"
	"go.uber.org/zap"
)

type Service interface {
	SignUp(ctx context.Context, username, password string) (*models.Account, string, error)
	LogIn(ctx context.Context, username, password string) (*models.Account, string, error)
	DeleteAccount(ctx context.Context, accountID uuid.UUID) error

	CreateTopic(ctx context.Context, accountID uuid.UUID, label string) (*models.Topic, error)
	ListTopics(ctx context.Context, accountID uuid.UUID) ([]*models.Topic, error)
	DeleteTopic(ctx context.Context, accountID, topicID uuid.UUID) error

	GenerateRoadmap(ctx context.Context, accountID, topicID uuid.UUID) (*models.Roadmap, error)
	UpsertRoadmap(ctx context.Context, accountID, topicID uuid.UUID, document json.RawMessage) (*models.Roadmap, error)
	GetRoadmap(ctx context.Context, accountID, roadmapID uuid.UUID) (*models.Roadmap, error)
	ListRoadmaps(ctx context.Context, accountID, topicID uuid.UUID) ([]*models.Roadmap, error)
	DeleteRoadmap(ctx context.Context, accountID, roadmapID uuid.UUID) error

	MarkComplete(ctx context.Context, accountID, roadmapID uuid.UUID, pointID string, completedAt time.Time) (*models.Progress, error)
	MarkIncomplete(ctx context.Context, accountID, roadmapID uuid.UUID, pointID string) (*models.Progress, error)
	ListProgress(ctx context.Context, accountID, roadmapID uuid.UUID) ([]*models.Progress, error)

	WritePage(ctx context.Context, accountID, roadmapID uuid.UUID, level string, pageNumber, generation int, videoData json.RawMessage) (*models.VideoPage, error)
	RegeneratePlaylist(ctx context.Context, accountID, roadmapID uuid.UUID, level string) ([]*models.VideoPage, error)
	ListPages(ctx context.Context, accountID, roadmapID uuid.UUID, level string, generation int) ([]*models.VideoPage, error)
	LatestGeneration(ctx context.Context, accountID, roadmapID uuid.UUID, level string) (int, error)
	PruneGeneration(ctx context.Context, accountID, roadmapID uuid.UUID, level string, generation int) error

	GetSettings(ctx context.Context, accountID uuid.UUID) (*models.Settings, error)
	UpdateSettings(ctx context.Context, accountID uuid.UUID, input service.SettingsInput) (*models.Settings, error)
}

type Handler struct {
	service Service
	tokens  *auth.TokenManager
}

func New(service Service, tokens *auth.TokenManager) *Handler {
	return &Handler{service: service, tokens: tokens}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/signup", h.signUp)
		r.Post("/auth/login", h.logIn)

		r.Group(func(r chi.Router) {
			r.Use(h.authenticate)

			r.Delete("/account", h.deleteAccount)

			r.Get("/settings", h.getSettings)
			r.Put("/settings", h.updateSettings)

			r.Post("/topics", h.createTopic)
			r.Get("/topics", h.listTopics)
			r.Delete("/topics/{topicID}", h.deleteTopic)
			r.Get("/topics/{topicID}/roadmaps", h.listRoadmaps)
			r.Put("/topics/{topicID}/roadmap", h.upsertRoadmap)
			r.Post("/topics/{topicID}/roadmap/generate", h.generateRoadmap)

			r.Get("/roadmaps/{roadmapID}", h.getRoadmap)
			r.Delete("/roadmaps/{roadmapID}", h.deleteRoadmap)

			r.Get("/roadmaps/{roadmapID}/progress", h.listProgress)
			r.Put("/roadmaps/{roadmapID}/progress/{pointID}", h.markProgress)

			r.Get("/roadmaps/{roadmapID}/levels/{level}/pages", h.listPages)
			r.Put("/roadmaps/{roadmapID}/levels/{level}/pages/{pageNumber}", h.writePage)
			r.Post("/roadmaps/{roadmapID}/levels/{level}/regenerate", h.regeneratePlaylist)
			r.Delete("/roadmaps/{roadmapID}/levels/{level}/generations/{generation}", h.pruneGeneration)
		})
	})

	return r
}

type ctxKey int

const accountIDKey ctxKey = iota

func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeJSON(w, http.StatusUnauthorized, errBody("missing bearer token"))
			return
		}

		accountID, err := h.tokens.Parse(token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errBody("invalid token"))
			return
		}

		ctx := context.WithValue(r.Context(), accountIDKey, accountID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func accountFrom(r *http.Request) uuid.UUID {
	id, _ := r.Context().Value(accountIDKey).(uuid.UUID)
	return id
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Account *models.Account `json:"account"`
	Token   string          `json:"token"`
}

func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	account, token, err := h.service.SignUp(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{Account: account, Token: token})
}

func (h *Handler) logIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	account, token, err := h.service.LogIn(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Account: account, Token: token})
}

func (h *Handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAccount(r.Context(), accountFrom(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createTopic(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label string `json:"label"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	topic, err := h.service.CreateTopic(r.Context(), accountFrom(r), req.Label)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, topic)
}

func (h *Handler) listTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := h.service.ListTopics(r.Context(), accountFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, topics)
}

func (h *Handler) deleteTopic(w http.ResponseWriter, r *http.Request) {
	topicID, ok := pathUUID(w, r, "topicID")
	if !ok {
		return
	}

	if err := h.service.DeleteTopic(r.Context(), accountFrom(r), topicID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listRoadmaps(w http.ResponseWriter, r *http.Request) {
	topicID, ok := pathUUID(w, r, "topicID")
	if !ok {
		return
	}

	roadmaps, err := h.service.ListRoadmaps(r.Context(), accountFrom(r), topicID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roadmaps)
}

func (h *Handler) upsertRoadmap(w http.ResponseWriter, r *http.Request) {
	topicID, ok := pathUUID(w, r, "topicID")
	if !ok {
		return
	}

	var req struct {
		Document json.RawMessage `json:"document"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	roadmap, err := h.service.UpsertRoadmap(r.Context(), accountFrom(r), topicID, req.Document)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roadmap)
}

func (h *Handler) generateRoadmap(w http.ResponseWriter, r *http.Request) {
	topicID, ok := pathUUID(w, r, "topicID")
	if !ok {
		return
	}

	roadmap, err := h.service.GenerateRoadmap(r.Context(), accountFrom(r), topicID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, roadmap)
}

func (h *Handler) getRoadmap(w http.ResponseWriter, r *http.Request) {
	roadmapID, ok := pathUUID(w, r, "roadmapID")
	if !ok {
		return
	}

	roadmap, err := h.service.GetRoadmap(r.Context(), accountFrom(r), roadmapID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roadmap)
}

func (h *Handler) deleteRoadmap(w http.ResponseWriter, r *http.Request) {
	roadmapID, ok := pathUUID(w, r, "roadmapID")
	if !ok {
		return
	}

	if err := h.service.DeleteRoadmap(r.Context(), accountFrom(r), roadmapID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listProgress(w http.ResponseWriter, r *http.Request) {
	roadmapID, ok := pathUUID(w, r, "roadmapID")
	if !ok {
		return
	}

	entries, err := h.service.ListProgress(r.Context(), accountFrom(r), roadmapID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) markProgress(w http.ResponseWriter, r *http.Request) {
	roadmapID, ok := pathUUID(w, r, "roadmapID")
	if !ok {
		return
	}
	pointID := chi.URLParam(r, "pointID")

	var req struct {
		Completed   bool       `json:"completed"`
		CompletedAt *time.Time `json:"completed_at"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	var entry *models.Progress
	var err error
	if req.Completed {
		completedAt := utils.NowUTC()
		if req.CompletedAt != nil {
			completedAt = *req.CompletedAt
		}
		entry, err = h.service.MarkComplete(r.Context(), accountFrom(r), roadmapID, pointID, completedAt)
	} else {
		entry, err = h.service.MarkIncomplete(r.Context(), accountFrom(r), roadmapID, pointID)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) listPages(w http.ResponseWriter, r *http.Request) {
	roadmapID, ok := pathUUID(w, r, "roadmapID")
	if !ok {
		return
	}
	level := chi.URLParam(r, "level")
	accountID := accountFrom(r)

	generation := 0
	if raw := r.URL.Query().Get("generation"); raw != "" {
		var err error
		if generation, err = strconv.Atoi(raw); err != nil {
			writeJSON(w, http.StatusBadRequest, errBody("generation must be an integer"))
			return
		}
	} else {
		latest, err := h.service.LatestGeneration(r.Context(), accountID, roadmapID, level)
		if err != nil {
			writeError(w, err)
			return
		}
		if latest == 0 {
			writeJSON(w, http.StatusOK, pagesResponse{Generation: 0, Pages: []*models.VideoPage{}})
			return
		}
		generation = latest
	}

	pages, err := h.service.ListPages(r.Context(), accountID, roadmapID, level, generation)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pagesResponse{Generation: generation, Pages: pages})
}

type pagesResponse struct {
	Generation int                 `json:"generation"`
	Pages      []*models.VideoPage `json:"pages"`
}

func (h *Handler) writePage(w http.ResponseWriter, r *http.Request) {
	roadmapID, ok := pathUUID(w, r, "roadmapID")
	if !ok {
		return
	}
	level := chi.URLParam(r, "level")

	pageNumber, err := strconv.Atoi(chi.URLParam(r, "pageNumber"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("page number must be an integer"))
		return
	}

	var req struct {
		Generation int             `json:"generation"`
		VideoData  json.RawMessage `json:"video_data"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	page, err := h.service.WritePage(r.Context(), accountFrom(r), roadmapID, level, pageNumber, req.Generation, req.VideoData)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) regeneratePlaylist(w http.ResponseWriter, r *http.Request) {
	roadmapID, ok := pathUUID(w, r, "roadmapID")
	if !ok {
		return
	}
	level := chi.URLParam(r, "level")

	pages, err := h.service.RegeneratePlaylist(r.Context(), accountFrom(r), roadmapID, level)
	if err != nil {
		writeError(w, err)
		return
	}

	generation := 0
	if len(pages) > 0 {
		generation = pages[0].Generation
	}
	writeJSON(w, http.StatusCreated, pagesResponse{Generation: generation, Pages: pages})
}

func (h *Handler) pruneGeneration(w http.ResponseWriter, r *http.Request) {
	roadmapID, ok := pathUUID(w, r, "roadmapID")
	if !ok {
		return
	}
	level := chi.URLParam(r, "level")

	generation, err := strconv.Atoi(chi.URLParam(r, "generation"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("generation must be an integer"))
		return
	}

	if err := h.service.PruneGeneration(r.Context(), accountFrom(r), roadmapID, level, generation); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.GetSettings(r.Context(), accountFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	var input service.SettingsInput
	if !decodeBody(w, r, &input) {
		return
	}

	settings, err := h.service.UpdateSettings(r.Context(), accountFrom(r), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errBody(fmt.Sprintf("%s must be a UUID", name)))
		return uuid.Nil, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := gojson.NewDecoder(r.Body).Decode(dest); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("malformed JSON body"))
		return false
	}
	return true
}

func errBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// writeError maps the domain taxonomy onto status codes. Anything outside the
// taxonomy is an infrastructure failure: logged in full, reported opaquely.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, errBody(err.Error()))
	case errors.Is(err, models.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errBody(err.Error()))
	case errors.Is(err, models.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errBody(err.Error()))
	case errors.Is(err, models.ErrConflict):
		writeJSON(w, http.StatusConflict, errBody(err.Error()))
	default:
		zap.S().Errorw("internal error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errBody("internal error"))
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := gojson.NewEncoder(w).Encode(body); err != nil {
		zap.S().Errorw("encode response", "error", err)
	}
}
