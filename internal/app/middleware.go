package app

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/kalendra/kalendra/pkg/tenant"
	log "github.com/sirupsen/logrus"
)

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies) {

	// Propagate X-Tenant-Id header into context for downstream services
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			tenantHeader := req.Header.Get("X-Tenant-Id")
			ctx := req.Context()

			if tenantHeader != "" {
				t, err := deps.TenantRepo.GetByUid(ctx, tenantHeader)
				if err != nil {
					if errors.Is(err, tenant.ErrTenantNotFound) {
						log.Debugf("tenant not found: %s", tenantHeader)
						http.Error(w, "tenant not found", http.StatusForbidden)
						return
					}
					log.Errorf("failed to resolve tenant: %v", err)
					http.Error(w, err.Error(), http.StatusBadRequest)
					return
				}
				ctx = tenant.WithTenant(ctx, t)
			}
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
}
