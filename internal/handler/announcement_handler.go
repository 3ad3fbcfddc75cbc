package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/jobboard/internal/announcement"
	"github.com/hitoshi/jobboard/internal/middleware"
	"github.com/hitoshi/jobboard/internal/model"
)

// AnnouncementServiceInterface は求人ハンドラーが必要とするサービスインターフェース。
type AnnouncementServiceInterface interface {
	Create(ctx context.Context, owner *model.User, in announcement.CreateInput) (*model.Announcement, error)
	List(ctx context.Context) ([]*model.Announcement, error)
	ListMine(ctx context.Context, owner *model.User) ([]*model.Announcement, error)
	Get(ctx context.Context, id string) (*model.Announcement, error)
	Delete(ctx context.Context, principal *model.User, id string) error
}

// AnnouncementHandler は求人のHTTPハンドラー。
type AnnouncementHandler struct {
	service AnnouncementServiceInterface
}

// NewAnnouncementHandler はAnnouncementHandlerを生成する。
func NewAnnouncementHandler(service AnnouncementServiceInterface) *AnnouncementHandler {
	return &AnnouncementHandler{service: service}
}

// deleteAnnouncementResponse は求人削除のレスポンス。
type deleteAnnouncementResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// Create は求人を掲載する。
// POST /postAnnunci
func (h *AnnouncementHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		middleware.WriteAPIError(w, model.NewUnauthenticatedError())
		return
	}

	var in announcement.CreateInput
	if err := decodeJSON(w, r, &in); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	created, err := h.service.Create(r.Context(), user, in)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAnnouncementResponse(created))
}

// List は全求人を新しい順に返す。
// GET /postAnnunci
func (h *AnnouncementHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAnnouncementResponses(list))
}

// ListMine は呼び出し元の企業が掲載した求人を返す。
// GET /postAnnunci/miei-annunci
func (h *AnnouncementHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		middleware.WriteAPIError(w, model.NewUnauthenticatedError())
		return
	}

	list, err := h.service.ListMine(r.Context(), user)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAnnouncementResponses(list))
}

// Get は求人を1件返す。
// GET /postAnnunci/{id}
func (h *AnnouncementHandler) Get(w http.ResponseWriter, r *http.Request) {
	found, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAnnouncementResponse(found))
}

// Delete は求人を削除する。掲載者本人のみ実行できる。
// DELETE /postAnnunci/{id}
func (h *AnnouncementHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		middleware.WriteAPIError(w, model.NewUnauthenticatedError())
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), user, id); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, deleteAnnouncementResponse{
		Message: "求人を削除しました。",
		ID:      id,
	})
}
