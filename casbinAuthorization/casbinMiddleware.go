package casbinAuthorization

import (
	"booking_service/domain"
	"encoding/json"
	"net/http"

	"github.com/casbin/casbin"
	"github.com/sirupsen/logrus"
)

type IdentityResolver interface {
	Identity(r *http.Request) (domain.Identity, error)
}

func NewEnforcer(modelPath, policyPath string) (*casbin.Enforcer, error) {
	return casbin.NewEnforcerSafe(modelPath, policyPath)
}

// CasbinMiddleware authorises a request by the userType of its bearer token
// against the path and method policy. Requests without a token act as
// Unauthenticated.
func CasbinMiddleware(e *casbin.Enforcer, resolver IdentityResolver, logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			identity, err := resolver.Identity(r)
			if err != nil {
				logger.Warnf("Unauthorized access attempt: %v", err)
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			res, err := e.EnforceSafe(string(identity.UserType), r.URL.Path, r.Method)
			if err != nil {
				logger.Errorf("Error enforcing authorization policy: %v", err)
				writeError(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			if !res {
				if !identity.IsAuthenticated() {
					logger.Warnf("Unauthenticated access to %s %s", r.Method, r.URL.Path)
					writeError(w, http.StatusUnauthorized, "Unauthorized")
					return
				}
				logger.Warnf("Forbidden access to %s %s by %s", r.Method, r.URL.Path, identity.UserType)
				writeError(w, http.StatusForbidden, "Forbidden")
				return
			}

			next.ServeHTTP(w, r)
		}

		return http.HandlerFunc(fn)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"error": true, "message": message})
}
