// Package handlers implements the StayLedger HTTP endpoints. Handlers are
// thin: they decode the request, call an application service and render the
// result in the common APIResponse envelope.
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/StayLedger/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/StayLedger/internal/interfaces/http/middleware"
	"github.com/turtacn/StayLedger/pkg/errors"
	"github.com/turtacn/StayLedger/pkg/types/common"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// actorFrom returns the operator recorded on state transitions.
func actorFrom(r *http.Request) string {
	return middleware.ActorFromContext(r.Context())
}

// orgFrom prefers the scope set by middleware and falls back to ?org_id=.
func orgFrom(r *http.Request) string {
	if org := middleware.OrgFromContext(r.Context()); org != "" {
		return org
	}
	return r.URL.Query().Get("org_id")
}

// decodeJSON reads a JSON body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.NewValidation("invalid request body").WithDetail(err.Error())
	}
	return nil
}

// parseDate accepts YYYY-MM-DD or RFC 3339. An empty value is the zero time.
func parseDate(field, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, errors.InvalidParam("invalid date").WithDetail(field + "=" + v)
	}
	return t, nil
}

// splitList reads a repeated or comma separated query parameter.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// writeJSON writes data wrapped in the success envelope.
func writeJSON(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) {
	resp := common.NewSuccessResponse(data)
	resp.RequestID = chimw.GetReqID(r.Context())
	writeRaw(w, statusCode, resp)
}

func writeRaw(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// writeAppError renders err with the status mapped from its code. Server
// errors are logged and masked.
func writeAppError(w http.ResponseWriter, r *http.Request, logger logging.Logger, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)
	message := errors.DefaultMessageForCode(code)

	var ae *errors.AppError
	if status < http.StatusInternalServerError && stderrors.As(err, &ae) {
		message = ae.Message
		if ae.Detail != "" {
			message += ": " + ae.Detail
		}
	}
	if status >= http.StatusInternalServerError {
		if code == errors.CodeUnknown {
			code = errors.ErrCodeInternal
			message = errors.DefaultMessageForCode(code)
		}
		logger.Error("request failed",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.String("code", code.String()),
			logging.Err(err))
	}

	resp := common.NewErrorResponse(code.String(), message)
	resp.RequestID = chimw.GetReqID(r.Context())
	writeRaw(w, status, resp)
}

//Personal.AI order the ending
