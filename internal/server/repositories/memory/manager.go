// Package memory is an in-process RepositoryManager backed by maps. It
// mirrors the Postgres repositories' error contract (not found, unique
// violations) and is used to exercise services and handlers without a
// database.
//
// The DBTX handed to the factories is ignored, so writes are not undone
// when the surrounding transaction rolls back.
package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/pagekeeper/internal/common"
	"github.com/dmitrijs2005/pagekeeper/internal/dbx"
	"github.com/dmitrijs2005/pagekeeper/internal/server/models"
	"github.com/dmitrijs2005/pagekeeper/internal/server/repositories/access"
	"github.com/dmitrijs2005/pagekeeper/internal/server/repositories/invites"
	"github.com/dmitrijs2005/pagekeeper/internal/server/repositories/pages"
	"github.com/dmitrijs2005/pagekeeper/internal/server/repositories/posts"
	"github.com/dmitrijs2005/pagekeeper/internal/server/repositories/users"
)

type accessKey struct {
	userID, pageID int64
}

// Store holds all tables. Its zero value is not usable; call NewStore.
type Store struct {
	mu      sync.Mutex
	nextID  int64
	users   map[int64]*models.User
	pages   map[int64]*models.Page
	access  map[accessKey]*models.Access
	invites map[int64]*models.Invite
	posts   map[int64]*models.Post
}

func NewStore() *Store {
	return &Store{
		users:   map[int64]*models.User{},
		pages:   map[int64]*models.Page{},
		access:  map[accessKey]*models.Access{},
		invites: map[int64]*models.Invite{},
		posts:   map[int64]*models.Post{},
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// RepositoryManager vends repositories over one Store.
type RepositoryManager struct {
	Store *Store
}

func NewRepositoryManager() *RepositoryManager {
	return &RepositoryManager{Store: NewStore()}
}

func (m *RepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *RepositoryManager) Users(dbx.DBTX) users.Repository     { return usersRepo{m.Store} }
func (m *RepositoryManager) Pages(dbx.DBTX) pages.Repository     { return pagesRepo{m.Store} }
func (m *RepositoryManager) Access(dbx.DBTX) access.Repository   { return accessRepo{m.Store} }
func (m *RepositoryManager) Invites(dbx.DBTX) invites.Repository { return invitesRepo{m.Store} }
func (m *RepositoryManager) Posts(dbx.DBTX) posts.Repository     { return postsRepo{m.Store} }

// Counts reports table sizes, for assertions.
func (s *Store) Counts() (pages, envelopes, invites, posts int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pages), len(s.access), len(s.invites), len(s.posts)
}

// HasAccess reports whether the envelope (userID, pageID) exists.
func (s *Store) HasAccess(userID, pageID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.access[accessKey{userID, pageID}]
	return ok
}

type usersRepo struct{ s *Store }

func (r usersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.UserName == u.UserName {
			return nil, common.ErrUsernameTaken
		}
		if existing.EmailHash == u.EmailHash {
			return nil, common.ErrEmailTaken
		}
	}
	u.ID = r.s.id()
	u.CreatedAt = time.Now()
	c := *u
	r.s.users[u.ID] = &c
	return u, nil
}

func (r usersRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r usersRepo) GetByUserName(_ context.Context, name string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.UserName == name })
}

func (r usersRepo) GetByEmailHash(_ context.Context, hash string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.EmailHash == hash })
}

func (r usersRepo) find(match func(*models.User) bool) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if match(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

type pagesRepo struct{ s *Store }

func (r pagesRepo) Create(_ context.Context, p *models.Page) (*models.Page, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.id()
	p.CreatedAt = time.Now()
	c := *p
	r.s.pages[p.ID] = &c
	return p, nil
}

func (r pagesRepo) GetByID(_ context.Context, id int64) (*models.Page, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.pages[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *p
	return &c, nil
}

func (r pagesRepo) LockByID(ctx context.Context, id int64) error {
	_, err := r.GetByID(ctx, id)
	return err
}

func (r pagesRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.pages[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.pages, id)
	return nil
}

type accessRepo struct{ s *Store }

func (r accessRepo) Create(_ context.Context, a *models.Access) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := accessKey{a.UserID, a.PageID}
	if _, ok := r.s.access[k]; ok {
		return common.ErrorAlreadyExists
	}
	a.CreatedAt = time.Now()
	c := *a
	r.s.access[k] = &c
	return nil
}

func (r accessRepo) Get(_ context.Context, userID, pageID int64) (*models.Access, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.access[accessKey{userID, pageID}]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *a
	return &c, nil
}

func (r accessRepo) ListPagesForUser(_ context.Context, userID int64) ([]*models.PageWithKey, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := make([]*models.PageWithKey, 0)
	for k, a := range r.s.access {
		if k.userID != userID {
			continue
		}
		if p, ok := r.s.pages[k.pageID]; ok {
			result = append(result, &models.PageWithKey{Page: *p, EncryptedKey: a.EncryptedKey})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r accessRepo) Delete(_ context.Context, userID, pageID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := accessKey{userID, pageID}
	if _, ok := r.s.access[k]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.access, k)
	return nil
}

func (r accessRepo) CountForPage(_ context.Context, pageID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for k := range r.s.access {
		if k.pageID == pageID {
			n++
		}
	}
	return n, nil
}

type invitesRepo struct{ s *Store }

func (r invitesRepo) Create(_ context.Context, inv *models.Invite) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.invites {
		if existing.UserID == inv.UserID && existing.PageID == inv.PageID {
			return common.ErrorAlreadyExists
		}
	}
	inv.ID = r.s.id()
	inv.CreatedAt = time.Now()
	c := *inv
	r.s.invites[inv.ID] = &c
	return nil
}

func (r invitesRepo) ListForUser(_ context.Context, userID int64) ([]*models.InviteView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := make([]*models.InviteView, 0)
	for _, inv := range r.s.invites {
		if inv.UserID != userID {
			continue
		}
		p, ok := r.s.pages[inv.PageID]
		if !ok {
			continue
		}
		result = append(result, &models.InviteView{
			Invite:               *inv,
			EncryptedTitle:       p.EncryptedTitle,
			EncryptedDescription: p.EncryptedDescription,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r invitesRepo) Exists(_ context.Context, userID, pageID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, inv := range r.s.invites {
		if inv.UserID == userID && inv.PageID == pageID {
			return true, nil
		}
	}
	return false, nil
}

func (r invitesRepo) DeleteForUser(_ context.Context, id, userID int64) (*models.Invite, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invites[id]
	if !ok || inv.UserID != userID {
		return nil, common.ErrorNotFound
	}
	delete(r.s.invites, id)
	return inv, nil
}

func (r invitesRepo) DeleteByPage(_ context.Context, pageID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, inv := range r.s.invites {
		if inv.PageID == pageID {
			delete(r.s.invites, id)
		}
	}
	return nil
}

type postsRepo struct{ s *Store }

func (r postsRepo) Create(_ context.Context, p *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.id()
	c := *p
	r.s.posts[p.ID] = &c
	return nil
}

func (r postsRepo) ListForPage(_ context.Context, pageID int64) ([]*models.PostView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := make([]*models.PostView, 0)
	for _, p := range r.s.posts {
		if p.PageID != pageID {
			continue
		}
		v := &models.PostView{Post: *p}
		if u, ok := r.s.users[p.UserID]; ok {
			v.UserName = u.UserName
		}
		result = append(result, v)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r postsRepo) DeleteOwned(_ context.Context, id, pageID, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok || p.PageID != pageID || p.UserID != userID {
		return common.ErrorNotFound
	}
	delete(r.s.posts, id)
	return nil
}

func (r postsRepo) DeleteByPage(_ context.Context, pageID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, p := range r.s.posts {
		if p.PageID == pageID {
			delete(r.s.posts, id)
		}
	}
	return nil
}
