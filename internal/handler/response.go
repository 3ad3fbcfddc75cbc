// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/jobboard/internal/model"
)

// maxRequestBodyBytes はJSONリクエストボディの上限。
const maxRequestBodyBytes = 1 << 20

// writeJSON はvをJSONとして書き込む。
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// decodeJSON はリクエストボディをvにデコードする。
// 空のボディや解析できないボディはINVALID_REQUESTを返す。
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return model.NewInvalidRequestError()
	}
	return nil
}

// messageResponse は処理結果メッセージのみのレスポンス。
type messageResponse struct {
	Message string `json:"message"`
}

// --- ユーザー ---

type userResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	UserType    string `json:"userType"`
}

type userEnvelope struct {
	Message string       `json:"message,omitempty"`
	User    userResponse `json:"user"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.Name,
		UserType:    string(u.Role),
	}
}

// ownerResponse は求人の掲載者・応募者の要約。
type ownerResponse struct {
	ID          string `json:"_id"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
}

func toOwnerResponse(id string, summary *model.UserSummary) ownerResponse {
	if summary == nil {
		return ownerResponse{ID: id}
	}
	return ownerResponse{ID: summary.ID, DisplayName: summary.Name, Email: summary.Email}
}

// --- 求人 ---

type announcementResponse struct {
	ID          string        `json:"_id"`
	Title       string        `json:"titolo"`
	Company     string        `json:"azienda"`
	Description string        `json:"descrizione"`
	Location    string        `json:"località"`
	PublishedAt time.Time     `json:"dataPubblicazione"`
	CreatedBy   ownerResponse `json:"createdBy"`
}

func toAnnouncementResponse(a *model.Announcement) announcementResponse {
	return announcementResponse{
		ID:          a.ID,
		Title:       a.Title,
		Company:     a.Company,
		Description: a.Description,
		Location:    a.Location,
		PublishedAt: a.PublishedAt,
		CreatedBy:   toOwnerResponse(a.CreatedBy, a.Owner),
	}
}

func toAnnouncementResponses(list []*model.Announcement) []announcementResponse {
	out := make([]announcementResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toAnnouncementResponse(a))
	}
	return out
}

// announcementSummary は応募レスポンスに埋め込む求人の要約。
// 用途ごとに必要なフィールドだけを設定する。
type announcementSummary struct {
	ID          string     `json:"_id"`
	Title       string     `json:"titolo"`
	Company     string     `json:"azienda"`
	Description string     `json:"descrizione,omitempty"`
	Location    string     `json:"località,omitempty"`
	PublishedAt *time.Time `json:"dataPubblicazione,omitempty"`
}

// --- 応募 ---

type applicationResponse struct {
	ID             string               `json:"_id"`
	Announcement   *announcementSummary `json:"postAnnunci,omitempty"`
	Applicant      *ownerResponse       `json:"applierId,omitempty"`
	ApplicantEmail string               `json:"emailCandidato,omitempty"`
	Message        string               `json:"descrizioneCandidato"`
	SubmittedAt    time.Time            `json:"dataCandidatura"`
}

// toSubmittedApplicationResponse は応募作成のレスポンスを生成する。
func toSubmittedApplicationResponse(a *model.Application) applicationResponse {
	resp := applicationResponse{
		ID:             a.ID,
		ApplicantEmail: a.ApplicantEmail,
		Message:        a.Message,
		SubmittedAt:    a.SubmittedAt,
	}
	if a.Announcement != nil {
		resp.Announcement = &announcementSummary{
			ID:      a.Announcement.ID,
			Title:   a.Announcement.Title,
			Company: a.Announcement.Company,
		}
	}
	applicant := toOwnerResponse(a.ApplicantID, a.Applicant)
	resp.Applicant = &applicant
	return resp
}

// toMyApplicationResponse は自分の応募一覧の1件を生成する。
func toMyApplicationResponse(a *model.Application) applicationResponse {
	resp := applicationResponse{
		ID:          a.ID,
		Message:     a.Message,
		SubmittedAt: a.SubmittedAt,
	}
	if a.Announcement != nil {
		published := a.Announcement.PublishedAt
		resp.Announcement = &announcementSummary{
			ID:          a.Announcement.ID,
			Title:       a.Announcement.Title,
			Company:     a.Announcement.Company,
			Location:    a.Announcement.Location,
			PublishedAt: &published,
		}
	}
	return resp
}

// toCandidateResponse は求人への応募者一覧の1件を生成する。
func toCandidateResponse(a *model.Application) applicationResponse {
	applicant := toOwnerResponse(a.ApplicantID, a.Applicant)
	return applicationResponse{
		ID:             a.ID,
		Applicant:      &applicant,
		ApplicantEmail: a.ApplicantEmail,
		Message:        a.Message,
		SubmittedAt:    a.SubmittedAt,
	}
}

type announcementApplicationsResponse struct {
	Announcement announcementSummary   `json:"annuncio"`
	Applications []applicationResponse `json:"candidature"`
}
