package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/pagekeeper/internal/common"
)

type jsonObject map[string]any

// userErrors are failures the client caused and can be told about.
var userErrors = []error{
	common.ErrorValidation,
	common.ErrUsernameTaken,
	common.ErrEmailTaken,
	common.ErrUserNotFound,
	common.ErrSelfInvite,
	common.ErrAlreadyMember,
	common.ErrAlreadyInvited,
	common.ErrNotStaged,
	common.ErrMissingEnvelope,
}

func isUserError(err error) bool {
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error(r.Context(), "encode response", "error", err)
	}
}

func (s *HTTPServer) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error(r.Context(), err.Error(), "path", r.URL.Path)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// failJSON answers an AJAX request whose service call returned err.
// Forbidden is a bare 403, user errors carry their message, anything
// else is logged and hidden.
func (s *HTTPServer) failJSON(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorForbidden):
		s.writeJSON(w, r, http.StatusForbidden, jsonObject{"success": false})
	case isUserError(err):
		s.writeJSON(w, r, http.StatusOK, jsonObject{"success": false, "message": err.Error()})
	default:
		s.internalError(w, r, err)
	}
}

// flashRedirect queues msg and sends the browser to target.
func (s *HTTPServer) flashRedirect(w http.ResponseWriter, r *http.Request, msg, target string) {
	if err := s.sessions.AddFlash(w, r, msg); err != nil {
		s.internalError(w, r, err)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
