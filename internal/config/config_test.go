package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enterprise-readiness/internal/stage"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "app:\n  name: readiness-test\n"))
	require.NoError(t, err)

	assert.Equal(t, "readiness-test", cfg.App.Name)
	assert.Equal(t, SourceSynthetic, cfg.Source.Kind)
	assert.Equal(t, 0.30, cfg.Model.Weights.UsageGrowth)
	assert.Equal(t, 0.25, cfg.Model.Weights.ProductionMaturity)
	assert.Equal(t, 0.20, cfg.Model.Weights.TeamAdoption)
	assert.Equal(t, 0.15, cfg.Model.Weights.CrossChannel)
	assert.Equal(t, 10.0, cfg.Model.RiskPenaltyCap)
	assert.Equal(t, []float64{33, 48, 63, 78}, cfg.Model.StageThresholds)
	assert.Equal(t, time.Hour, cfg.Scheduler.Interval)
	assert.Equal(t, 3.0, cfg.Model.HiddenRatio)

	thresholds, err := cfg.Model.Thresholds()
	require.NoError(t, err)
	assert.Equal(t, stage.DefaultThresholds(), thresholds)

	stages, err := cfg.Alerting.AlertStages()
	require.NoError(t, err)
	assert.Equal(t, []stage.Stage{stage.EnterpriseReady}, stages)
}

func TestLoadFileOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
source:
  kind: file
  path: testdata/accounts.yaml
model:
  weights:
    usage_growth_weight: 0.40
    production_maturity_weight: 0.30
    team_adoption_weight: 0.20
    cross_channel_weight: 0.10
  weight_total: 1.0
  stage_thresholds: [30, 45, 60, 75]
scheduler:
  interval: 15m
`))
	require.NoError(t, err)

	assert.Equal(t, SourceFile, cfg.Source.Kind)
	assert.Equal(t, 0.40, cfg.Model.ScoringParams().Weights.UsageGrowth)
	assert.Equal(t, 15*time.Minute, cfg.Scheduler.Interval)
	assert.Equal(t, []float64{30, 45, 60, 75}, cfg.Model.StageThresholds)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("READINESS_MODEL_RISK_PENALTY_CAP", "5")
	t.Setenv("READINESS_PIPELINE_WORKERS", "8")

	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)
	assert.Equal(t, 5.0, cfg.Model.RiskPenaltyCap)
	assert.Equal(t, 8, cfg.Pipeline.Workers)
}

func TestLoadFailsFastOnInconsistentModel(t *testing.T) {
	cases := map[string]string{
		"weights off total": `
model:
  weights:
    usage_growth_weight: 0.50
`,
		"threshold gap": `
model:
  stage_thresholds: [33, 48, 48, 78]
`,
		"threshold count": `
model:
  stage_thresholds: [33, 48, 78]
`,
		"unknown alert stage": `
alerting:
  stages: [hot]
`,
		"unknown source": `
source:
  kind: s3
`,
		"postgres without dsn": `
source:
  kind: postgres
`,
		"zero hidden ratio": `
model:
  hidden_ratio: 0
`,
		"bad cron": `
scheduler:
  cron: "61 * * * *"
`,
		"telegram without token": `
alerting:
  telegram:
    enabled: true
    chat_id: "1"
`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestResolveTopN(t *testing.T) {
	cfg := &Config{Export: ExportConfig{TopN: 25}}
	assert.Equal(t, 25, cfg.ResolveTopN(0))
	assert.Equal(t, 10, cfg.ResolveTopN(10))
}

func TestLoadDotEnvNextToConfig(t *testing.T) {
	path := writeConfig(t, "{}\n")
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), ".env"), []byte("READINESS_EXPORT_TOP_N=7\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("READINESS_EXPORT_TOP_N") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Export.TopN)
}

func TestLoadCronSchedule(t *testing.T) {
	cfg, err := Load(writeConfig(t, "scheduler:\n  cron: \"0 6 * * 1-5\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "0 6 * * 1-5", cfg.Scheduler.Cron)
	assert.Equal(t, 1.0, cfg.Alerting.Telegram.RateLimit)
}
