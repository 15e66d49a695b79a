package observability

import (
	"context"
	"strings"

	"github.com/uptrace/uptrace-go/uptrace"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/infantry-community/internal/config"
	"github.com/riskibarqy/infantry-community/internal/platform/logging"
)

const serviceNamespace = "infantry-online"

func noopShutdown(context.Context) error { return nil }

// InitUptrace installs the global tracer, meter and logger providers. When
// logs are enabled every leveled log call is mirrored as an OTel record.
func InitUptrace(cfg config.Config, logger *logging.Logger) (func(context.Context) error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	switch {
	case !cfg.UptraceEnabled:
		return uptraceOff(logger, "UPTRACE_ENABLED=false"), nil
	case strings.TrimSpace(cfg.UptraceDSN) == "":
		return uptraceOff(logger, "UPTRACE_DSN empty"), nil
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithResourceAttributes(attribute.String("service.namespace", serviceNamespace)),
		uptrace.WithLoggingEnabled(cfg.UptraceLogsEnabled),
	)

	var mirror logging.MirrorFunc
	if cfg.UptraceLogsEnabled {
		mirror = newUptraceLogMirror(cfg.ServiceVersion)
	}
	logging.SetMirror(mirror)

	logger.Info("uptrace enabled",
		"service_version", cfg.ServiceVersion,
		"logs_mirrored", mirror != nil,
		"capture_request_body", cfg.UptraceCaptureRequestBody,
	)

	return func(ctx context.Context) error {
		logging.SetMirror(nil)
		return uptrace.Shutdown(ctx)
	}, nil
}

func uptraceOff(logger *logging.Logger, reason string) func(context.Context) error {
	logging.SetMirror(nil)
	logger.Info("uptrace disabled", "reason", reason)
	return noopShutdown
}
