package web

import (
	"net/http"

	"github.com/gorilla/mux"
)

const (
	get  = http.MethodGet
	post = http.MethodPost
)

// Handler builds the route table.
func (s *HTTPServer) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.requestLogger)

	r.HandleFunc("/healthz", s.healthz).Methods(get)

	r.HandleFunc("/", s.home).Methods(get)
	r.HandleFunc("/login", s.loginPage).Methods(get)
	r.HandleFunc("/login/submit", s.loginSubmit).Methods(post)
	r.HandleFunc("/register", s.register).Methods(get, post)
	r.HandleFunc("/logout", s.logout).Methods(get, post)

	r.HandleFunc("/create-page", s.authGate(s.createPage)).Methods(get)
	r.HandleFunc("/create-page/add-user", s.authGate(s.stageUser)).Methods(post)
	r.HandleFunc("/create-page/remove-user", s.authGate(s.unstageUser)).Methods(post)
	r.HandleFunc("/create-page/get-keys", s.authGate(s.browserKey)).Methods(get)
	r.HandleFunc("/create-page/submit", s.authGate(s.createPageSubmit)).Methods(post)
	r.HandleFunc("/create-page/init-get", s.authGate(s.stagedUsers)).Methods(get)

	r.HandleFunc("/pages", s.authGate(s.pagesPage)).Methods(get)
	r.HandleFunc("/pages/init-get", s.authGate(s.pagesState)).Methods(get)
	r.HandleFunc("/pages/{id:[0-9]+}/delete", s.authGate(s.leavePage)).Methods(post)

	r.HandleFunc("/pages/invites", s.authGate(s.invitesPage)).Methods(get)
	r.HandleFunc("/pages/invites/init-get", s.authGate(s.invitesState)).Methods(get)
	r.HandleFunc("/pages/accept-invite/{id:[0-9]+}", s.authGate(s.acceptInvite)).Methods(post)
	r.HandleFunc("/pages/decline-invite/{id:[0-9]+}", s.authGate(s.declineInvite)).Methods(post)

	r.HandleFunc("/page/{id:[0-9]+}", s.authGate(s.pagePage)).Methods(get)
	r.HandleFunc("/page/{id:[0-9]+}/init-get", s.authGate(s.pageState)).Methods(get)
	r.HandleFunc("/page/{id:[0-9]+}/add-post", s.authGate(s.addPost)).Methods(post)
	r.HandleFunc("/page/{id:[0-9]+}/delete-post/{post_id:[0-9]+}", s.authGate(s.deletePost)).Methods(post)
	r.HandleFunc("/page/{id:[0-9]+}/invite-user/request", s.authGate(s.inviteRequest)).Methods(post)
	r.HandleFunc("/page/{id:[0-9]+}/invite-user", s.authGate(s.inviteUser)).Methods(post)

	return r
}

func (s *HTTPServer) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
