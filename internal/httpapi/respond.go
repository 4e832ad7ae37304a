package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/acmelabs/invoice_dashboard/internal/data"
	svcerrors "github.com/acmelabs/invoice_dashboard/internal/errors"
	"github.com/acmelabs/invoice_dashboard/internal/httputil"
)

// VersionHeader carries the revalidation version of the route a page payload belongs to.
const VersionHeader = "X-Route-Version"

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	httputil.WriteJSON(w, status, v)
}

// writePage writes page data tagged with the current version of route.
func (s *Server) writePage(w http.ResponseWriter, route string, v interface{}) {
	w.Header().Set(VersionHeader, strconv.FormatUint(s.versions.Version(route), 10))
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, v)
}

// writeServiceError maps err onto a ServiceError and writes it.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	se := svcerrors.GetServiceError(err)
	if se == nil {
		var fe *data.DataFetchError
		switch {
		case data.IsNotFound(err):
			se = svcerrors.NotFound("Invoice not found.")
		case errors.As(err, &fe):
			se = svcerrors.DataFetchFailed(fe.Message, err)
		default:
			se = svcerrors.Internal("Internal error.", err)
		}
	}
	httputil.WriteErrorResponse(w, r, se.HTTPStatus, string(se.Code), se.Message, se.Details)
}
