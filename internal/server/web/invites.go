package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/pagekeeper/internal/common"
	"github.com/dmitrijs2005/pagekeeper/internal/server/auth"
)

const msgBadTicket = "Invite request expired, please try again"

// inviteRequest vets the invitee and returns their public key with a
// ticket that binds the follow-up inviteUser call to this page and caller.
func (s *HTTPServer) inviteRequest(w http.ResponseWriter, r *http.Request) {
	st := current(r)
	pageID, ok := routeID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	name := strings.TrimSpace(r.PostFormValue("new_user"))
	user, err := s.svc.Invites.CandidateForPage(r.Context(), st.UserID, pageID, name)
	if err != nil {
		s.failJSON(w, r, err)
		return
	}

	ticket, err := auth.IssueTicket(auth.Ticket{InviterID: st.UserID, Invitee: user.UserName, PageID: pageID}, s.ticketSecret, s.ticketValidity)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, jsonObject{
		"success":    true,
		"message":    "User can be invited",
		"username":   user.UserName,
		"public_key": user.PublicKey,
		"ticket":     ticket,
	})
}

func (s *HTTPServer) inviteUser(w http.ResponseWriter, r *http.Request) {
	st := current(r)
	pageID, ok := routeID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	t, err := auth.ParseTicket(r.PostFormValue("ticket"), s.ticketSecret)
	if err != nil {
		s.writeJSON(w, r, http.StatusOK, jsonObject{"success": false, "message": msgBadTicket})
		return
	}
	if t.PageID != pageID || t.InviterID != st.UserID {
		s.writeJSON(w, r, http.StatusForbidden, jsonObject{"success": false})
		return
	}

	if _, err := s.svc.Invites.Invite(r.Context(), st.UserID, pageID, t.Invitee, r.PostFormValue("encrypted_key")); err != nil {
		s.failJSON(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "invite sent", "page_id", pageID, "user_id", st.UserID)
	s.writeJSON(w, r, http.StatusOK, jsonObject{"success": true, "message": fmt.Sprintf("Invited %s", t.Invitee)})
}

func (s *HTTPServer) invitesPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "invites.html", viewData{Title: "Invites"})
}

func (s *HTTPServer) invitesState(w http.ResponseWriter, r *http.Request) {
	s.writeInvites(w, r, true, "")
}

func (s *HTTPServer) writeInvites(w http.ResponseWriter, r *http.Request, success bool, msg string) {
	st := current(r)

	user, err := s.svc.Users.Profile(r.Context(), st.UserID)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	list, err := s.svc.Invites.ListForUser(r.Context(), st.UserID)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	invites := make([]jsonObject, 0, len(list))
	for _, inv := range list {
		invites = append(invites, jsonObject{
			"id":            inv.ID,
			"page_id":       inv.PageID,
			"title":         inv.EncryptedTitle,
			"description":   inv.EncryptedDescription,
			"encrypted_key": inv.EncryptedKey,
		})
	}

	body := jsonObject{
		"success":               success,
		"browser_key":           user.BrowserKey,
		"encrypted_private_key": user.EncryptedPrivateKey,
		"invites":               invites,
	}
	if msg != "" {
		body["message"] = msg
	}
	s.writeJSON(w, r, http.StatusOK, body)
}

// acceptInvite stores the page key the browser re-wrapped for the invitee.
func (s *HTTPServer) acceptInvite(w http.ResponseWriter, r *http.Request) {
	st := current(r)
	inviteID, ok := routeID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	pageID, err := s.svc.Invites.Accept(r.Context(), st.UserID, inviteID, r.PostFormValue("encrypted_key"))
	if err != nil {
		if isUserError(err) {
			s.writeInvites(w, r, false, err.Error())
			return
		}
		s.failJSON(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "invite accepted", "page_id", pageID, "user_id", st.UserID)
	s.writeInvites(w, r, true, "Invite accepted")
}

func (s *HTTPServer) declineInvite(w http.ResponseWriter, r *http.Request) {
	st := current(r)
	inviteID, ok := routeID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	if err := s.svc.Invites.Decline(r.Context(), st.UserID, inviteID); err != nil {
		if errors.Is(err, common.ErrorForbidden) {
			s.failJSON(w, r, err)
			return
		}
		s.internalError(w, r, err)
		return
	}
	s.writeInvites(w, r, true, "Invite declined")
}
