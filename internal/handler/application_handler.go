package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/jobboard/internal/application"
	"github.com/hitoshi/jobboard/internal/middleware"
	"github.com/hitoshi/jobboard/internal/model"
)

// ApplicationServiceInterface は応募ハンドラーが必要とするサービスインターフェース。
type ApplicationServiceInterface interface {
	Submit(ctx context.Context, applicant *model.User, in application.SubmitInput) (*model.Application, error)
	ListMine(ctx context.Context, applicant *model.User) ([]*model.Application, error)
	ListForAnnouncement(ctx context.Context, principal *model.User, announcementID string) (*application.AnnouncementApplications, error)
}

// ApplicationHandler は応募のHTTPハンドラー。
type ApplicationHandler struct {
	service ApplicationServiceInterface
}

// NewApplicationHandler はApplicationHandlerを生成する。
func NewApplicationHandler(service ApplicationServiceInterface) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

// Submit は求人に応募する。
// POST /candidature
func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		middleware.WriteAPIError(w, model.NewUnauthenticatedError())
		return
	}

	var in application.SubmitInput
	if err := decodeJSON(w, r, &in); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	created, err := h.service.Submit(r.Context(), user, in)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSubmittedApplicationResponse(created))
}

// ListMine は呼び出し元の応募を新しい順に返す。0件の場合は空配列。
// GET /candidature/mie-candidature
func (h *ApplicationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
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

	resp := make([]applicationResponse, 0, len(list))
	for _, a := range list {
		resp = append(resp, toMyApplicationResponse(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListForAnnouncement は求人への応募者一覧を返す。求人の掲載者のみ閲覧できる。
// GET /candidature/annuncio/{id}
func (h *ApplicationHandler) ListForAnnouncement(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		middleware.WriteAPIError(w, model.NewUnauthenticatedError())
		return
	}

	result, err := h.service.ListForAnnouncement(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	resp := announcementApplicationsResponse{
		Announcement: announcementSummary{
			ID:          result.Announcement.ID,
			Title:       result.Announcement.Title,
			Company:     result.Announcement.Company,
			Description: result.Announcement.Description,
		},
		Applications: make([]applicationResponse, 0, len(result.Applications)),
	}
	for _, a := range result.Applications {
		resp.Applications = append(resp.Applications, toCandidateResponse(a))
	}
	writeJSON(w, http.StatusOK, resp)
}
