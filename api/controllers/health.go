package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/shipcalc-backend/api/responses"
	"github.com/angelmondragon/shipcalc-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/shipcalc-backend/pkg/errors"
	"github.com/angelmondragon/shipcalc-backend/pkg/logger"
)

const (
	envHeader         = "X-Shipcalc-Env"
	readyCheckTimeout = 2 * time.Second
)

// Pinger is satisfied by the database and redis clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the database and, when configured, redis. A nil pinger is
// reported as disabled.
func HealthReady(cfg *config.Config, logg *logger.Logger, db Pinger, cache Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		checks := map[string]string{
			"database": checkDependency(ctx, db),
			"redis":    checkDependency(ctx, cache),
		}
		for _, name := range []string{"database", "redis"} {
			if checks[name] != "error" {
				continue
			}
			err := pkgerrors.New(pkgerrors.CodeDependency, name+" unavailable").WithDetails(checks)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}

func checkDependency(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	if err := p.Ping(ctx); err != nil {
		return "error"
	}
	return "ok"
}
