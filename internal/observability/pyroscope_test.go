package observability

import (
	"testing"

	"github.com/riskibarqy/infantry-community/internal/config"
	"github.com/riskibarqy/infantry-community/internal/platform/logging"
)

func TestInitPyroscope_DisabledIsNoop(t *testing.T) {
	t.Parallel()

	stop, err := InitPyroscope(config.Config{PyroscopeEnabled: false}, logging.NewNop())
	if err != nil {
		t.Fatalf("init pyroscope: %v", err)
	}
	if err := stop(); err != nil {
		t.Fatalf("stop pyroscope: %v", err)
	}
}

func TestPyroscopeTags(t *testing.T) {
	t.Parallel()

	tags := pyroscopeTags(config.Config{AppEnv: config.EnvProd, ServiceName: "infantry-community-api", ServiceVersion: "1.4.0"})
	if tags["env"] != config.EnvProd || tags["service"] != "infantry-community-api" || tags["version"] != "1.4.0" {
		t.Fatalf("unexpected tags: %v", tags)
	}
	if _, ok := pyroscopeTags(config.Config{})["version"]; ok {
		t.Fatalf("empty version should not be tagged")
	}
}
