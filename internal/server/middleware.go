package server

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/adesina-femi/staffcore/internal/web"
	"github.com/adesina-femi/staffcore/pkg/authz"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)
			log.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start).String(),
				"role":     principalFrom(r.Context()).Role,
			}).Info("http request")
		})
	}
}

// guard wraps a handler with an authorization check for one
// resource/action pair. In shadow mode denials are logged and the request
// proceeds.
func (s *Server) guard(resource, action string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject := authz.SubjectFromRole(principalFrom(r.Context()).Role)
		allowed, enforced, err := s.authorizer.Authorize(subject, resource, action)
		if err != nil {
			s.log.WithError(err).Error("authorization check failed")
			web.WriteError(w, r, http.StatusInternalServerError, "internal", "request failed")
			return
		}
		if !allowed {
			s.log.WithFields(logrus.Fields{
				"subject": subject, "resource": resource, "action": action, "enforced": enforced,
			}).Warn("authorization denied")
			if enforced {
				web.WriteError(w, r, http.StatusForbidden, "forbidden", "not allowed")
				return
			}
		}
		next(w, r)
	}
}
