package controllers

import (
	"context"
	"net/http"

	"go.uber.org/multierr"

	"github.com/mateoreyes/drivehub-backend/api/responses"
	"github.com/mateoreyes/drivehub-backend/pkg/config"
	pkgerrors "github.com/mateoreyes/drivehub-backend/pkg/errors"
)

type pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-DriveHub-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks every datastore and reports all failures at once.
func HealthReady(cfg *config.Config, dbPing, redisPing pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-DriveHub-Env", cfg.App.Env)

		var errs error
		if dbPing != nil {
			if err := dbPing.Ping(r.Context()); err != nil {
				errs = multierr.Append(errs, err)
			}
		}
		if redisPing != nil {
			if err := redisPing.Ping(r.Context()); err != nil {
				errs = multierr.Append(errs, err)
			}
		}
		if errs != nil {
			responses.WriteError(r.Context(), nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "dependencies unreachable"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
