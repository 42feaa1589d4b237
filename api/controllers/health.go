package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/Mahbub-Sajon/srs-publications-server/api/responses"
	pkgerrors "github.com/Mahbub-Sajon/srs-publications-server/pkg/errors"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/logger"
)

const (
	rootBanner   = "srs-publication is publishing"
	readyTimeout = 2 * time.Second
)

// Pinger is anything readiness can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependency names a Pinger in the readiness report. Nil pingers are skipped.
type Dependency struct {
	Name   string
	Pinger Pinger
}

// Root answers GET / with the plain-text banner.
func Root() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteText(w, http.StatusOK, rootBanner)
	}
}

func HealthLive(env string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SRS-Env", env)
		responses.WriteOK(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every dependency and fails on the first error.
func HealthReady(env string, logg *logger.Logger, deps ...Dependency) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SRS-Env", env)
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		checks := map[string]string{}
		for _, dep := range deps {
			if dep.Pinger == nil {
				continue
			}
			if err := dep.Pinger.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, dep.Name+" unavailable").
						WithDetails(map[string]string{"dependency": dep.Name}))
				return
			}
			checks[dep.Name] = "ok"
		}
		responses.WriteOK(w, map[string]any{"status": "ready", "checks": checks})
	}
}
