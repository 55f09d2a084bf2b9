package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"github.com/turtacn/StayLedger/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/StayLedger/pkg/errors"
	"github.com/turtacn/StayLedger/pkg/types/common"
)

type orgContextKey struct{}
type actorContextKey struct{}

// ScopeConfig controls how the organisation and the acting operator are read
// from a request. Authentication is upstream; these headers are trusted.
type ScopeConfig struct {
	// OrgHeader carries the organisation id. Default: X-Org-ID.
	OrgHeader string
	// OrgQueryParam is the fallback for OrgHeader. Default: org_id.
	OrgQueryParam string
	// ActorHeader carries the operator id. Default: X-User-ID.
	ActorHeader string
	// AllowedOrgs, when non-empty, rejects any other organisation with 403.
	AllowedOrgs []string
}

var scopeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_.:@-]{1,128}$`)

func DefaultScopeConfig() ScopeConfig {
	return ScopeConfig{OrgHeader: "X-Org-ID", OrgQueryParam: "org_id", ActorHeader: "X-User-ID"}
}

// Scope injects the organisation and actor ids into the request context.
// Missing values pass through; malformed ones are rejected with 400.
func Scope(cfg ScopeConfig, logger logging.Logger) func(http.Handler) http.Handler {
	def := DefaultScopeConfig()
	if cfg.OrgHeader == "" {
		cfg.OrgHeader = def.OrgHeader
	}
	if cfg.OrgQueryParam == "" {
		cfg.OrgQueryParam = def.OrgQueryParam
	}
	if cfg.ActorHeader == "" {
		cfg.ActorHeader = def.ActorHeader
	}
	var allowed map[string]struct{}
	if len(cfg.AllowedOrgs) > 0 {
		allowed = make(map[string]struct{}, len(cfg.AllowedOrgs))
		for _, o := range cfg.AllowedOrgs {
			allowed[strings.TrimSpace(o)] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			org := strings.TrimSpace(r.Header.Get(cfg.OrgHeader))
			if org == "" {
				org = strings.TrimSpace(r.URL.Query().Get(cfg.OrgQueryParam))
			}
			if org != "" {
				if !scopeIDPattern.MatchString(org) {
					logger.Warn("invalid org id", logging.String("org_id", org), logging.String("path", r.URL.Path))
					writeScopeError(w, http.StatusBadRequest, errors.ErrCodeValidation, "invalid org id")
					return
				}
				if allowed != nil {
					if _, ok := allowed[org]; !ok {
						logger.Warn("org not permitted", logging.String("org_id", org), logging.String("path", r.URL.Path))
						writeScopeError(w, http.StatusForbidden, errors.ErrCodeForbidden, "org is not permitted")
						return
					}
				}
				ctx = context.WithValue(ctx, orgContextKey{}, org)
				w.Header().Set(cfg.OrgHeader, org)
			}

			if actor := strings.TrimSpace(r.Header.Get(cfg.ActorHeader)); actor != "" {
				if !scopeIDPattern.MatchString(actor) {
					writeScopeError(w, http.StatusBadRequest, errors.ErrCodeValidation, "invalid user id")
					return
				}
				ctx = context.WithValue(ctx, actorContextKey{}, actor)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OrgFromContext returns the organisation id set by Scope, or "".
func OrgFromContext(ctx context.Context) string {
	v, _ := ctx.Value(orgContextKey{}).(string)
	return v
}

// ActorFromContext returns the operator id set by Scope, or "".
func ActorFromContext(ctx context.Context) string {
	v, _ := ctx.Value(actorContextKey{}).(string)
	return v
}

func writeScopeError(w http.ResponseWriter, statusCode int, code errors.ErrorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(common.NewErrorResponse(code.String(), message))
}

//Personal.AI order the ending
