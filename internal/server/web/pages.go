package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/pagekeeper/internal/common"
)

func (s *HTTPServer) pagesPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "pages.html", viewData{Title: "Pages"})
}

func (s *HTTPServer) pagesState(w http.ResponseWriter, r *http.Request) {
	st := current(r)

	user, err := s.svc.Users.Profile(r.Context(), st.UserID)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	list, err := s.svc.Pages.ListForUser(r.Context(), st.UserID)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	pages := make([]jsonObject, 0, len(list))
	for _, p := range list {
		pages = append(pages, jsonObject{
			"id":            p.ID,
			"title":         p.EncryptedTitle,
			"description":   p.EncryptedDescription,
			"encrypted_key": p.EncryptedKey,
		})
	}
	s.writeJSON(w, r, http.StatusOK, jsonObject{"success": true, "browser_key": user.BrowserKey, "pages": pages})
}

func (s *HTTPServer) leavePage(w http.ResponseWriter, r *http.Request) {
	st := current(r)
	pageID, ok := routeID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	deleted, err := s.svc.Pages.Leave(r.Context(), st.UserID, pageID)
	if err != nil {
		s.failJSON(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "left page", "page_id", pageID, "user_id", st.UserID, "page_deleted", deleted)
	s.writeJSON(w, r, http.StatusOK, jsonObject{"success": true, "page_deleted": deleted})
}

func (s *HTTPServer) pagePage(w http.ResponseWriter, r *http.Request) {
	pageID, ok := routeID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	if _, err := s.svc.Pages.Open(r.Context(), current(r).UserID, pageID); err != nil {
		if errors.Is(err, common.ErrorForbidden) {
			s.forbiddenPage(w, r)
			return
		}
		s.internalError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "page.html", viewData{Title: "Page", PageID: pageID})
}

func (s *HTTPServer) pageState(w http.ResponseWriter, r *http.Request) {
	pageID, ok := routeID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.writePageState(w, r, pageID)
}

// writePageState answers with everything the page screen shows: the
// caller's wrapped page key, the page metadata and the posts.
func (s *HTTPServer) writePageState(w http.ResponseWriter, r *http.Request, pageID int64) {
	st := current(r)

	view, err := s.svc.Pages.Open(r.Context(), st.UserID, pageID)
	if err != nil {
		s.failJSON(w, r, err)
		return
	}
	user, err := s.svc.Users.Profile(r.Context(), st.UserID)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	posts := make([]jsonObject, 0, len(view.Posts))
	for _, p := range view.Posts {
		posts = append(posts, jsonObject{
			"id":         p.ID,
			"message":    p.EncryptedMessage,
			"user":       p.UserName,
			"created_at": p.CreatedAt.UTC().Format(time.RFC3339),
			"own":        p.Own,
		})
	}

	s.writeJSON(w, r, http.StatusOK, jsonObject{
		"success":     true,
		"browser_key": user.BrowserKey,
		"page_key":    view.EncryptedKey,
		"title":       view.Page.EncryptedTitle,
		"description": view.Page.EncryptedDescription,
		"posts":       posts,
	})
}

func (s *HTTPServer) addPost(w http.ResponseWriter, r *http.Request) {
	st := current(r)
	pageID, ok := routeID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	if _, err := s.svc.Posts.Add(r.Context(), st.UserID, pageID, r.PostFormValue("encrypted_message")); err != nil {
		s.failJSON(w, r, err)
		return
	}
	s.writePageState(w, r, pageID)
}

func (s *HTTPServer) deletePost(w http.ResponseWriter, r *http.Request) {
	st := current(r)
	pageID, ok := routeID(r, "id")
	postID, ok2 := routeID(r, "post_id")
	if !ok || !ok2 {
		http.NotFound(w, r)
		return
	}

	if err := s.svc.Posts.Delete(r.Context(), st.UserID, pageID, postID); err != nil {
		s.failJSON(w, r, err)
		return
	}
	s.writePageState(w, r, pageID)
}
