package observability

import (
	"testing"

	"github.com/riskibarqy/infantry-community/internal/config"
	"github.com/riskibarqy/infantry-community/internal/platform/logging"
)

func TestInitUptrace_StaysOffWithoutDSN(t *testing.T) {
	cases := map[string]config.Config{
		"disabled":    {UptraceEnabled: false, UptraceDSN: "https://token@api.uptrace.dev?grpc=4317"},
		"missing dsn": {UptraceEnabled: true, UptraceDSN: "   "},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			cfg.ServiceName = "infantry-community-api"
			cfg.AppEnv = config.EnvDev

			shutdown, err := InitUptrace(cfg, logging.NewNop())
			if err != nil {
				t.Fatalf("init uptrace: %v", err)
			}
			if err := shutdown(t.Context()); err != nil {
				t.Fatalf("shutdown uptrace: %v", err)
			}
		})
	}
}
