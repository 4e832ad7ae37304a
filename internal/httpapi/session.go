package httpapi

import (
	"net/http"
	"strings"

	"github.com/acmelabs/invoice_dashboard/internal/auth"
	"github.com/acmelabs/invoice_dashboard/internal/httputil"
	"github.com/acmelabs/invoice_dashboard/internal/logging"
	"github.com/acmelabs/invoice_dashboard/internal/middleware"
)

// DashboardPath is the landing page after sign-in.
const DashboardPath = "/dashboard"

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RedirectTo string `json:"redirectTo,omitempty"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if !httputil.DecodeJSON(w, r, &req) {
			return
		}
	} else {
		form, err := parseForm(w, r)
		if err != nil {
			httputil.BadRequest(w, "Invalid form data.")
			return
		}
		req = loginRequest{Email: form.Get("email"), Password: form.Get("password"), RedirectTo: form.Get("redirectTo")}
	}

	user, err := s.authorizer.Authorize(r.Context(), auth.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if user == nil {
		httputil.Unauthorized(w, "Invalid credentials.")
		return
	}

	token, expires, err := s.sessions.Issue(user)
	if err != nil {
		s.logger.WithContext(r.Context()).WithError(err).Error("Failed to issue session")
		httputil.InternalError(w, "Something went wrong.")
		return
	}
	http.SetCookie(w, s.sessions.Cookie(token, expires))

	s.logger.LogSecurityEvent(logging.WithUserID(r.Context(), user.ID), "login", map[string]interface{}{
		"email": user.Email,
	})

	target := DashboardPath
	if req.RedirectTo == DashboardPath || strings.HasPrefix(req.RedirectTo, DashboardPath+"/") {
		target = req.RedirectTo
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, s.sessions.ClearCookie())
	http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
}
