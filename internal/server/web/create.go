package web

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/pagekeeper/internal/common"
	"github.com/dmitrijs2005/pagekeeper/internal/server/models"
	"github.com/dmitrijs2005/pagekeeper/internal/server/services"
	"github.com/dmitrijs2005/pagekeeper/internal/server/session"
)

func (s *HTTPServer) createPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "create_page.html", viewData{Title: "Create Page"})
}

// stagedUserList resolves the staging list to usernames and public keys.
// Names that no longer resolve are dropped from the list.
func (s *HTTPServer) stagedUserList(r *http.Request, st *session.State) ([]jsonObject, error) {
	users := make([]jsonObject, 0, len(st.Staged))
	for _, name := range append([]string{}, st.Staged...) {
		u, err := s.svc.Invites.Candidate(r.Context(), st.UserID, name)
		if err != nil {
			if isUserError(err) {
				st.Unstage(name)
				continue
			}
			return nil, err
		}
		users = append(users, jsonObject{"username": u.UserName, "key": u.PublicKey})
	}
	return users, nil
}

func (s *HTTPServer) writeStaging(w http.ResponseWriter, r *http.Request, st *session.State, success bool, msg string) {
	users, err := s.stagedUserList(r, st)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if err := s.sessions.Save(w, r, st); err != nil {
		s.internalError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, jsonObject{"success": success, "message": msg, "users": users})
}

func (s *HTTPServer) stageUser(w http.ResponseWriter, r *http.Request) {
	st := current(r)
	name := strings.TrimSpace(r.PostFormValue("new_user"))

	if _, err := s.svc.Invites.Candidate(r.Context(), st.UserID, name); err != nil {
		if isUserError(err) {
			s.writeStaging(w, r, st, false, "Cannot add user: "+err.Error())
			return
		}
		s.internalError(w, r, err)
		return
	}

	st.Stage(name)
	s.writeStaging(w, r, st, true, "Successfully added user")
}

func (s *HTTPServer) unstageUser(w http.ResponseWriter, r *http.Request) {
	st := current(r)
	name := strings.TrimSpace(r.PostFormValue("remove_user"))

	if !st.Unstage(name) {
		s.writeStaging(w, r, st, false, "Could not remove user")
		return
	}
	s.writeStaging(w, r, st, true, "Successfully removed user")
}

func (s *HTTPServer) stagedUsers(w http.ResponseWriter, r *http.Request) {
	s.writeStaging(w, r, current(r), true, "")
}

func (s *HTTPServer) browserKey(w http.ResponseWriter, r *http.Request) {
	user, err := s.svc.Users.Profile(r.Context(), current(r).UserID)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, jsonObject{"success": true, "browser_key": user.BrowserKey})
}

// stagedInvites reads the encrypted_keys-N-* fields and checks that they
// cover exactly the session's staging list.
func stagedInvites(r *http.Request, st *session.State) ([]models.StagedInvite, error) {
	var out []models.StagedInvite
	seen := make(map[string]bool)
	for i := 0; ; i++ {
		names, ok := r.PostForm[fmt.Sprintf("encrypted_keys-%d-username", i)]
		if !ok || len(names) == 0 {
			break
		}
		name := strings.TrimSpace(names[0])
		if seen[name] {
			return nil, common.NewValidationError("User %s is listed more than once", name)
		}
		if !st.IsStaged(name) {
			return nil, fmt.Errorf("%w: %s", common.ErrNotStaged, name)
		}
		key := r.PostFormValue(fmt.Sprintf("encrypted_keys-%d-key", i))
		if key == "" {
			return nil, fmt.Errorf("%w for %s", common.ErrMissingEnvelope, name)
		}
		seen[name] = true
		out = append(out, models.StagedInvite{UserName: name, EncryptedKey: key})
	}
	for _, name := range st.Staged {
		if !seen[name] {
			return nil, fmt.Errorf("%w for %s", common.ErrMissingEnvelope, name)
		}
	}
	return out, nil
}

func (s *HTTPServer) createPageSubmit(w http.ResponseWriter, r *http.Request) {
	st := current(r)

	if err := r.ParseForm(); err != nil {
		s.flashRedirect(w, r, "Invalid data", "/create-page")
		return
	}

	invites, err := stagedInvites(r, st)
	if err != nil {
		s.flashRedirect(w, r, err.Error(), "/create-page")
		return
	}

	page, err := s.svc.Pages.Create(r.Context(), st.UserID, services.NewPage{
		EncryptedTitle:       r.PostFormValue("encrypted_title"),
		EncryptedDescription: r.PostFormValue("encrypted_description"),
		CreatorKey:           r.PostFormValue("creator_encrypted_key"),
		Invites:              invites,
	})
	if err != nil {
		if isUserError(err) {
			s.flashRedirect(w, r, err.Error(), "/create-page")
			return
		}
		s.internalError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "page created", "page_id", page.ID, "user_id", st.UserID, "invites", len(invites))

	st.ClearStaged()
	if err := s.sessions.Save(w, r, st); err != nil {
		s.internalError(w, r, err)
		return
	}
	http.Redirect(w, r, "/pages", http.StatusSeeOther)
}
