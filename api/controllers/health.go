package controllers

import (
	"net/http"

	"github.com/dhruvbhatia/bizdesk-backend/api/responses"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/config"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/db"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-BizDesk-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, database db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-BizDesk-Env", cfg.App.Env)
		if database != nil {
			if err := database.Ping(r.Context()); err != nil {
				responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
