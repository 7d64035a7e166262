// Comando audit: recorre todos los productos, compara stock contra kardex y sale con
// código 1 si encuentra drift. Pensado para cron o CI nocturno.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jhoicas/kardex-api/internal/bootstrap"
	"github.com/jhoicas/kardex-api/pkg/config"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, Service: "kardex-audit"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := bootstrap.OpenBackend(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("abrir almacén")
		return 2
	}
	defer backend.Close()

	svc, err := bootstrap.NewServices(cfg, backend, nil, log)
	if err != nil {
		log.Error().Err(err).Msg("configuración del kardex")
		return 2
	}

	drifted, err := svc.Validator.AuditAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("auditoría interrumpida")
		return 2
	}
	if len(drifted) > 0 {
		return 1
	}
	return 0
}
