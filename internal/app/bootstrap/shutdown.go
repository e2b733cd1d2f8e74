// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown is invoked during WAFFLE's shutdown phase, after the HTTP server
// has stopped accepting new requests and existing requests have drained (or
// the shutdown timeout has elapsed).
//
// The context has a timeout (default 10 seconds) and should be respected.
// A returned error is logged but does not prevent the process from exiting.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.MongoClient != nil {
		logger.Info("disconnecting MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
