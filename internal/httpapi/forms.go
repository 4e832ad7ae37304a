package httpapi

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"github.com/acmelabs/invoice_dashboard/internal/actions"
	svcerrors "github.com/acmelabs/invoice_dashboard/internal/errors"
	"github.com/acmelabs/invoice_dashboard/internal/httputil"
	"github.com/acmelabs/invoice_dashboard/internal/revalidate"
)

const maxFormBytes = 1 << 20 // 1 MiB

// requestContext adapts an HTTP request to actions.RequestContext.
type requestContext struct {
	ctx         context.Context
	revalidator revalidate.Revalidator
	redirect    string
}

func (rc *requestContext) Context() context.Context { return rc.ctx }

func (rc *requestContext) Revalidate(path string) { rc.revalidator.Revalidate(path) }

func (rc *requestContext) Redirect(path string) { rc.redirect = path }

func (s *Server) newRequestContext(r *http.Request) *requestContext {
	return &requestContext{ctx: r.Context(), revalidator: s.revalidator}
}

// parseForm reads an urlencoded or multipart body.
func parseForm(w http.ResponseWriter, r *http.Request) (url.Values, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxFormBytes); err != nil {
			return nil, err
		}
		return r.PostForm, nil
	}
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return r.PostForm, nil
}

type formState struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// writeResult maps a mutation result onto the response.
// fallback is the redirect target when the mutation itself did not redirect.
func (s *Server) writeResult(w http.ResponseWriter, r *http.Request, rc *requestContext, res actions.Result, fallback string) {
	if res.Succeeded() {
		target := rc.redirect
		if target == "" {
			target = fallback
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	switch res.Kind {
	case actions.ResultValidationFailed:
		writeJSON(w, http.StatusUnprocessableEntity, formState{Message: res.Message, Errors: res.FieldErrors})
	default:
		se := svcerrors.DatabaseFailed(res.Message, res.Err)
		httputil.WriteErrorResponse(w, r, se.HTTPStatus, string(se.Code), se.Message, nil)
	}
}

func (s *Server) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	form, err := parseForm(w, r)
	if err != nil {
		httputil.BadRequest(w, "Invalid form data.")
		return
	}
	rc := s.newRequestContext(r)
	res := s.mutations.CreateInvoice(rc, form)
	s.writeResult(w, r, rc, res, actions.InvoicesPath)
}

func (s *Server) handleUpdateInvoice(w http.ResponseWriter, r *http.Request) {
	form, err := parseForm(w, r)
	if err != nil {
		httputil.BadRequest(w, "Invalid form data.")
		return
	}
	rc := s.newRequestContext(r)
	res := s.mutations.UpdateInvoice(rc, mux.Vars(r)["id"], form)
	s.writeResult(w, r, rc, res, actions.InvoicesPath)
}

func (s *Server) handleDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	rc := s.newRequestContext(r)
	res := s.mutations.DeleteInvoice(rc, mux.Vars(r)["id"])
	s.writeResult(w, r, rc, res, backTo(r, actions.InvoicesPath))
}

// backTo returns the dashboard path of the Referer, or fallback.
func backTo(r *http.Request, fallback string) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" {
		return fallback
	}
	if ref.Host != "" && ref.Host != r.Host {
		return fallback
	}
	if ref.Path != "/dashboard" && !strings.HasPrefix(ref.Path, "/dashboard/") {
		return fallback
	}
	if ref.RawQuery != "" {
		return ref.Path + "?" + ref.RawQuery
	}
	return ref.Path
}
