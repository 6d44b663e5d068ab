package web

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/pagekeeper/internal/server/session"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type ctxKey string

const requestIDKey ctxKey = "request_id"

const msgSessionExpired = "Your session has expired. Please log in again."

// statusRecorder remembers the status code for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *HTTPServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		start := time.Now()

		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r.WithContext(ctx))

		s.logger.Info(ctx, "request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// authGate admits requests with a live session and puts its state into
// the request context. Anything else is sent to the login page.
func (s *HTTPServer) authGate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := s.sessions.Load(r)
		if !st.Authenticated() {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		if st.Expired(s.now(), s.idleTimeout) {
			s.logger.Info(r.Context(), "session expired", "user_id", st.UserID)
			if err := s.sessions.Destroy(w, r, msgSessionExpired); err != nil {
				s.internalError(w, r, err)
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		next(w, r.WithContext(session.WithState(r.Context(), st)))
	}
}

// current is the state authGate stored. Handlers behind the gate always
// have one.
func current(r *http.Request) *session.State {
	st, _ := session.FromContext(r.Context())
	return st
}

func routeID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return id, err == nil
}
