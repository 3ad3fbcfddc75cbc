package handler

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hitoshi/jobboard/internal/model"
	"github.com/hitoshi/jobboard/internal/repository"
)

// memStore はルーター結合テスト用のインメモリストア。
// 6つのリポジトリインターフェースを実装し、一意制約やCASCADE削除をPostgreSQLと同じ意味で再現する。
type memStore struct {
	mu            sync.Mutex
	users         map[string]*model.User
	identities    map[string]*model.Identity // key: provider + "/" + providerUserID
	sessions      map[string]*model.Session
	pending       map[string]*model.PendingSignup
	announcements map[string]*model.Announcement
	applications  map[string]*model.Application
}

func newMemStore() *memStore {
	return &memStore{
		users:         map[string]*model.User{},
		identities:    map[string]*model.Identity{},
		sessions:      map[string]*model.Session{},
		pending:       map[string]*model.PendingSignup{},
		announcements: map[string]*model.Announcement{},
		applications:  map[string]*model.Application{},
	}
}

type (
	memUserRepo         struct{ s *memStore }
	memIdentityRepo     struct{ s *memStore }
	memSessionRepo      struct{ s *memStore }
	memPendingRepo      struct{ s *memStore }
	memAnnouncementRepo struct{ s *memStore }
	memApplicationRepo  struct{ s *memStore }
)

var (
	_ repository.UserRepository          = memUserRepo{}
	_ repository.IdentityRepository      = memIdentityRepo{}
	_ repository.SessionRepository       = memSessionRepo{}
	_ repository.PendingSignupRepository = memPendingRepo{}
	_ repository.AnnouncementRepository  = memAnnouncementRepo{}
	_ repository.ApplicationRepository   = memApplicationRepo{}
)

func (s *memStore) summary(userID string) *model.UserSummary {
	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	return &model.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

func (s *memStore) emailTaken(email string) bool {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

// --- users ---

func (r memUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r memUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memUserRepo) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.emailTaken(user.Email) {
		return repository.ErrDuplicateEmail
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r memUserRepo) CreateWithIdentity(_ context.Context, user *model.User, identity *model.Identity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := identity.Provider + "/" + identity.ProviderUserID
	if _, ok := r.s.identities[key]; ok {
		return repository.ErrDuplicateIdentity
	}
	if r.s.emailTaken(user.Email) {
		return repository.ErrDuplicateEmail
	}
	u, i := *user, *identity
	r.s.users[user.ID] = &u
	r.s.identities[key] = &i
	return nil
}

// --- identities ---

func (r memIdentityRepo) FindByProviderAndProviderUserID(_ context.Context, provider, providerUserID string) (*model.Identity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if i, ok := r.s.identities[provider+"/"+providerUserID]; ok {
		cp := *i
		return &cp, nil
	}
	return nil, nil
}

// --- sessions ---

func (r memSessionRepo) Create(_ context.Context, session *model.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *session
	r.s.sessions[session.ID] = &cp
	return nil
}

func (r memSessionRepo) FindByID(_ context.Context, id string) (*model.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess, ok := r.s.sessions[id]
	if !ok || !sess.ExpiresAt.After(time.Now()) {
		return nil, nil
	}
	cp := *sess
	return &cp, nil
}

func (r memSessionRepo) DeleteByID(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.sessions, id)
	return nil
}

// --- pending signups ---

func (r memPendingRepo) Create(_ context.Context, pending *model.PendingSignup) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *pending
	r.s.pending[pending.ID] = &cp
	return nil
}

func (r memPendingRepo) FindByID(_ context.Context, id string) (*model.PendingSignup, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.pending[id]
	if !ok || !p.ExpiresAt.After(time.Now()) {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r memPendingRepo) DeleteByID(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.pending, id)
	return nil
}

// --- announcements ---

func (r memAnnouncementRepo) withOwner(a *model.Announcement) *model.Announcement {
	cp := *a
	cp.Owner = r.s.summary(a.CreatedBy)
	return &cp
}

func (r memAnnouncementRepo) Create(_ context.Context, a *model.Announcement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *a
	cp.Owner = nil
	r.s.announcements[a.ID] = &cp
	return nil
}

func (r memAnnouncementRepo) FindByID(_ context.Context, id string) (*model.Announcement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a, ok := r.s.announcements[id]; ok {
		return r.withOwner(a), nil
	}
	return nil, nil
}

func (r memAnnouncementRepo) list(match func(*model.Announcement) bool) []*model.Announcement {
	out := []*model.Announcement{}
	for _, a := range r.s.announcements {
		if match(a) {
			out = append(out, r.withOwner(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PublishedAt.After(out[j].PublishedAt) })
	return out
}

func (r memAnnouncementRepo) List(_ context.Context, limit int) ([]*model.Announcement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := r.list(func(*model.Announcement) bool { return true })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memAnnouncementRepo) ListByOwner(_ context.Context, ownerID string) ([]*model.Announcement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.list(func(a *model.Announcement) bool { return a.CreatedBy == ownerID }), nil
}

func (r memAnnouncementRepo) DeleteByID(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.announcements[id]; !ok {
		return false, nil
	}
	delete(r.s.announcements, id)
	for appID, app := range r.s.applications {
		if app.AnnouncementID == id {
			delete(r.s.applications, appID)
		}
	}
	return true, nil
}

// --- applications ---

func (r memApplicationRepo) Create(_ context.Context, app *model.Application) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.applications {
		if existing.AnnouncementID == app.AnnouncementID && existing.ApplicantID == app.ApplicantID {
			return repository.ErrDuplicateApplication
		}
	}
	cp := *app
	cp.Announcement, cp.Applicant = nil, nil
	r.s.applications[app.ID] = &cp
	return nil
}

func (r memApplicationRepo) FindByAnnouncementAndApplicant(_ context.Context, announcementID, applicantID string) (*model.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, app := range r.s.applications {
		if app.AnnouncementID == announcementID && app.ApplicantID == applicantID {
			cp := *app
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memApplicationRepo) list(match func(*model.Application) bool) []*model.Application {
	out := []*model.Application{}
	for _, app := range r.s.applications {
		if !match(app) {
			continue
		}
		cp := *app
		if a, ok := r.s.announcements[app.AnnouncementID]; ok {
			ann := *a
			cp.Announcement = &ann
		}
		cp.Applicant = r.s.summary(app.ApplicantID)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out
}

func (r memApplicationRepo) ListByApplicant(_ context.Context, applicantID string) ([]*model.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.list(func(a *model.Application) bool { return a.ApplicantID == applicantID }), nil
}

func (r memApplicationRepo) ListByAnnouncement(_ context.Context, announcementID string) ([]*model.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.list(func(a *model.Application) bool { return a.AnnouncementID == announcementID }), nil
}
