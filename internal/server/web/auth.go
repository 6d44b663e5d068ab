package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/pagekeeper/internal/common"
	"github.com/dmitrijs2005/pagekeeper/internal/server/services"
	"github.com/dmitrijs2005/pagekeeper/internal/server/session"
)

const msgLoginFailed = "Login unsuccessful. Please check email and password."

// home greets a signed-in user with their stored address.
func (s *HTTPServer) home(w http.ResponseWriter, r *http.Request) {
	data := viewData{Title: "Home"}
	if st := s.sessions.Load(r); st.Authenticated() && !st.Expired(s.now(), s.idleTimeout) {
		user, err := s.svc.Users.Profile(r.Context(), st.UserID)
		if err != nil {
			s.internalError(w, r, err)
			return
		}
		if data.Email, err = s.svc.Users.DecryptEmail(user); err != nil {
			s.internalError(w, r, err)
			return
		}
	}
	s.render(w, r, http.StatusOK, "home.html", data)
}

func (s *HTTPServer) loginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login.html", viewData{Title: "Login"})
}

// loginSubmit checks the credentials and, on success, hands the browser
// the material it needs to unlock the private key.
func (s *HTTPServer) loginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.writeJSON(w, r, http.StatusBadRequest, jsonObject{"success": false, "message": "Invalid data"})
		return
	}

	user, err := s.svc.Users.Authenticate(r.Context(), r.PostFormValue("email"), r.PostFormValue("hashed_password"))
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			s.logger.Info(r.Context(), "login failed")
			if err := s.sessions.AddFlash(w, r, msgLoginFailed); err != nil {
				s.internalError(w, r, err)
				return
			}
			s.writeJSON(w, r, http.StatusOK, jsonObject{"success": false, "flash": true})
			return
		}
		s.internalError(w, r, err)
		return
	}

	st := &session.State{UserID: user.ID, UserName: user.UserName, LoginAt: s.now()}
	if err := s.sessions.Save(w, r, st); err != nil {
		s.internalError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "logged in", "user_id", user.ID)
	s.writeJSON(w, r, http.StatusOK, jsonObject{
		"success":               true,
		"flash":                 false,
		"browser_key":           user.BrowserKey,
		"aes_salt":              user.AESSalt,
		"encrypted_private_key": user.EncryptedPrivateKey,
		"public_key":            user.PublicKey,
		"username":              user.UserName,
	})
}

func (s *HTTPServer) register(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		s.render(w, r, http.StatusOK, "register.html", viewData{Title: "Register"})
		return
	}

	if err := r.ParseForm(); err != nil {
		s.flashRedirect(w, r, "Invalid data", "/register")
		return
	}

	user, err := s.svc.Users.Register(r.Context(), services.Registration{
		UserName:            r.PostFormValue("username"),
		Email:               r.PostFormValue("email"),
		Password:            r.PostFormValue("password"),
		ConfirmPassword:     r.PostFormValue("confirm_password"),
		PublicKey:           r.PostFormValue("public_key"),
		EncryptedPrivateKey: r.PostFormValue("encrypted_private_key"),
		AESSalt:             r.PostFormValue("aes_salt"),
	})
	if err != nil {
		if isUserError(err) {
			s.flashRedirect(w, r, err.Error(), "/register")
			return
		}
		s.internalError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "registered", "user_id", user.ID)
	s.flashRedirect(w, r, fmt.Sprintf("Account created for %s!", user.UserName), "/login")
}

func (s *HTTPServer) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Destroy(w, r); err != nil {
		s.internalError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
