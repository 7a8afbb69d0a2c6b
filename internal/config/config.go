package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	"enterprise-readiness/internal/logging"
	"enterprise-readiness/internal/pipeline"
	"enterprise-readiness/internal/scoring"
	"enterprise-readiness/internal/signals"
	"enterprise-readiness/internal/stage"
)

// Source kinds understood by the application.
const (
	SourceFile      = "file"
	SourcePostgres  = "postgres"
	SourceSynthetic = "synthetic"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	Source    SourceConfig    `mapstructure:"source"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Model     ModelConfig     `mapstructure:"model"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Alerting  AlertingConfig  `mapstructure:"alerting"`
	Export    ExportConfig    `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// SourceConfig selects where account usage is read from.
type SourceConfig struct {
	Kind      string          `mapstructure:"kind"`
	Path      string          `mapstructure:"path"`
	Synthetic SyntheticConfig `mapstructure:"synthetic"`
}

// SyntheticConfig tunes the seeded demo data generator.
type SyntheticConfig struct {
	Seed     int64 `mapstructure:"seed"`
	Accounts int   `mapstructure:"accounts"`
	Periods  int   `mapstructure:"periods"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	QueryTimeout    time.Duration `mapstructure:"query_timeout"`
}

// ModelConfig carries every scoring constant so re-tuning is a data change.
type ModelConfig struct {
	Weights          WeightsConfig `mapstructure:"weights"`
	WeightTotal      float64       `mapstructure:"weight_total"`
	RiskPenaltyCap   float64       `mapstructure:"risk_penalty_cap"`
	RiskPenaltyScale float64       `mapstructure:"risk_penalty_scale"`
	StageThresholds  []float64     `mapstructure:"stage_thresholds"`
	HiddenRatio      float64       `mapstructure:"hidden_ratio"`
	Signals          SignalsConfig `mapstructure:"signals"`
}

// WeightsConfig holds the positive signal weights.
type WeightsConfig struct {
	UsageGrowth        float64 `mapstructure:"usage_growth_weight"`
	ProductionMaturity float64 `mapstructure:"production_maturity_weight"`
	TeamAdoption       float64 `mapstructure:"team_adoption_weight"`
	CrossChannel       float64 `mapstructure:"cross_channel_weight"`
}

// SignalsConfig tunes the signal transforms.
type SignalsConfig struct {
	LookbackPeriods    int     `mapstructure:"lookback_periods"`
	GrowthSaturation   float64 `mapstructure:"growth_saturation"`
	GrowthCap          float64 `mapstructure:"growth_cap"`
	SeatSaturation     float64 `mapstructure:"seat_saturation"`
	AdoptionTrendShare float64 `mapstructure:"adoption_trend_share"`
}

// PipelineConfig governs batch evaluation.
type PipelineConfig struct {
	Workers int `mapstructure:"workers"`
}

// SchedulerConfig governs the re-scoring cadence of the run command.
type SchedulerConfig struct {
	Interval       time.Duration `mapstructure:"interval"`
	Cron           string        `mapstructure:"cron"`
	StartupDelay   time.Duration `mapstructure:"startup_delay"`
	RunImmediately bool          `mapstructure:"run_immediately"`
}

// AlertingConfig defines which stage promotions are pushed and where.
type AlertingConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Stages   []string       `mapstructure:"stages"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig describes the Telegram bot target.
type TelegramConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	BotToken  string        `mapstructure:"bot_token"`
	ChatID    string        `mapstructure:"chat_id"`
	APIBase   string        `mapstructure:"api_base"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	TopN int `mapstructure:"top_n"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	loadDotEnv(path)

	v := viper.New()
	v.SetEnvPrefix("READINESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// loadDotEnv exports variables from a .env file next to the config file or in
// the working directory. Variables already set in the environment win.
func loadDotEnv(configPath string) {
	paths := []string{".env"}
	if configPath != "" {
		paths = append([]string{filepath.Join(filepath.Dir(configPath), ".env")}, paths...)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "readiness")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("source.kind", SourceSynthetic)
	v.SetDefault("source.path", "accounts.yaml")
	v.SetDefault("source.synthetic.seed", int64(42))
	v.SetDefault("source.synthetic.accounts", 50)
	v.SetDefault("source.synthetic.periods", 12)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.query_timeout", "30s")

	defaults := scoring.DefaultParams()
	v.SetDefault("model.weights.usage_growth_weight", defaults.Weights.UsageGrowth)
	v.SetDefault("model.weights.production_maturity_weight", defaults.Weights.ProductionMaturity)
	v.SetDefault("model.weights.team_adoption_weight", defaults.Weights.TeamAdoption)
	v.SetDefault("model.weights.cross_channel_weight", defaults.Weights.CrossChannel)
	v.SetDefault("model.weight_total", defaults.WeightTotal)
	v.SetDefault("model.risk_penalty_cap", defaults.RiskPenaltyCap)
	v.SetDefault("model.risk_penalty_scale", defaults.RiskPenaltyScale)

	thresholds := stage.DefaultThresholds()
	v.SetDefault("model.stage_thresholds", thresholds[:])
	v.SetDefault("model.hidden_ratio", pipeline.DefaultHiddenRatio)

	sig := signals.DefaultParams()
	v.SetDefault("model.signals.lookback_periods", sig.LookbackPeriods)
	v.SetDefault("model.signals.growth_saturation", sig.GrowthSaturation)
	v.SetDefault("model.signals.growth_cap", sig.GrowthCap)
	v.SetDefault("model.signals.seat_saturation", sig.SeatSaturation)
	v.SetDefault("model.signals.adoption_trend_share", sig.AdoptionTrendShare)

	v.SetDefault("pipeline.workers", 4)

	v.SetDefault("scheduler.interval", "1h")
	v.SetDefault("scheduler.cron", "")
	v.SetDefault("scheduler.startup_delay", "0s")
	v.SetDefault("scheduler.run_immediately", true)

	v.SetDefault("alerting.enabled", false)
	v.SetDefault("alerting.stages", []string{stage.EnterpriseReady.Key()})
	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")
	v.SetDefault("alerting.telegram.timeout", "10s")
	v.SetDefault("alerting.telegram.rate_limit", 1.0)

	v.SetDefault("export.top_n", 25)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs sanity checks so inconsistent models fail at load time
// rather than while scoring.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourceFile:
		if c.Source.Path == "" {
			return fmt.Errorf("source.path is required for the file source")
		}
	case SourcePostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the postgres source")
		}
	case SourceSynthetic:
		if c.Source.Synthetic.Accounts <= 0 {
			return fmt.Errorf("source.synthetic.accounts must be greater than zero")
		}
		if c.Source.Synthetic.Periods <= 0 {
			return fmt.Errorf("source.synthetic.periods must be greater than zero")
		}
	default:
		return fmt.Errorf("source.kind %q is not supported", c.Source.Kind)
	}

	if err := c.Model.ScoringParams().Validate(); err != nil {
		return fmt.Errorf("model: %w", err)
	}
	if err := c.Model.SignalParams().Validate(); err != nil {
		return fmt.Errorf("model.signals: %w", err)
	}
	if _, err := c.Model.Thresholds(); err != nil {
		return fmt.Errorf("model: %w", err)
	}

	if c.Model.HiddenRatio <= 0 {
		return fmt.Errorf("model.hidden_ratio must be greater than zero")
	}

	if c.Pipeline.Workers <= 0 {
		return fmt.Errorf("pipeline.workers must be greater than zero")
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be greater than zero")
	}
	if c.Scheduler.Cron != "" {
		if _, err := cron.ParseStandard(c.Scheduler.Cron); err != nil {
			return fmt.Errorf("scheduler.cron: %w", err)
		}
	}
	if c.Export.TopN <= 0 {
		return fmt.Errorf("export.top_n must be greater than zero")
	}

	if _, err := c.Alerting.AlertStages(); err != nil {
		return fmt.Errorf("alerting.stages: %w", err)
	}
	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token is required")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id is required")
		}
		if c.Alerting.Telegram.RateLimit <= 0 {
			return fmt.Errorf("alerting.telegram.rate_limit must be greater than zero")
		}
	}
	return nil
}

// ScoringParams converts the model section into scoring constants.
func (m ModelConfig) ScoringParams() scoring.Params {
	return scoring.Params{
		Weights: scoring.Weights{
			UsageGrowth:        m.Weights.UsageGrowth,
			ProductionMaturity: m.Weights.ProductionMaturity,
			TeamAdoption:       m.Weights.TeamAdoption,
			CrossChannel:       m.Weights.CrossChannel,
		},
		WeightTotal:      m.WeightTotal,
		RiskPenaltyCap:   m.RiskPenaltyCap,
		RiskPenaltyScale: m.RiskPenaltyScale,
	}
}

// SignalParams converts the model section into signal tuning.
func (m ModelConfig) SignalParams() signals.Params {
	return signals.Params{
		LookbackPeriods:    m.Signals.LookbackPeriods,
		GrowthSaturation:   m.Signals.GrowthSaturation,
		GrowthCap:          m.Signals.GrowthCap,
		SeatSaturation:     m.Signals.SeatSaturation,
		AdoptionTrendShare: m.Signals.AdoptionTrendShare,
	}
}

// Thresholds converts the configured stage bands.
func (m ModelConfig) Thresholds() (stage.Thresholds, error) {
	return stage.ThresholdsFromSlice(m.StageThresholds)
}

// AlertStages parses the configured promotion targets.
func (a AlertingConfig) AlertStages() ([]stage.Stage, error) {
	out := make([]stage.Stage, 0, len(a.Stages))
	for _, raw := range a.Stages {
		s, err := stage.Parse(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// ResolveTopN returns either the CLI override or config default.
func (c *Config) ResolveTopN(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.TopN
}
