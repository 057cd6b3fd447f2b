package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/Veraticus/market-basket/internal/common"
	"github.com/Veraticus/market-basket/internal/engine"
	"github.com/Veraticus/market-basket/internal/mining"
	"github.com/Veraticus/market-basket/internal/rules"
)

// Configuration keys.
const (
	KeyLogLevel        = "logging.level"
	KeyLogFormat       = "logging.format"
	KeyMinSupport      = "mining.min_support"
	KeyMinConfidence   = "mining.min_confidence"
	KeyAlgorithm       = "mining.algorithm"
	KeyConfidenceBasis = "mining.confidence_basis"
	KeyWorkers         = "mining.workers"
	KeyDatabasePath    = "database.path"
)

// DefaultDatabasePath is used when database.path is unset.
const DefaultDatabasePath = "~/.config/basket/basket.db"

// Mining holds the thresholds and strategy for a mining run.
type Mining struct {
	Algorithm       string  `mapstructure:"algorithm"`
	ConfidenceBasis string  `mapstructure:"confidence_basis"`
	MinConfidence   float64 `mapstructure:"min_confidence"`
	MinSupport      int     `mapstructure:"min_support"`
	Workers         int     `mapstructure:"workers"`
}

// SetDefaults registers default values for every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyMinSupport, 2)
	v.SetDefault(KeyMinConfidence, 0.5)
	v.SetDefault(KeyAlgorithm, string(mining.AlgorithmFPGrowth))
	v.SetDefault(KeyConfidenceBasis, string(rules.BasisConsequent))
	v.SetDefault(KeyWorkers, 1)
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath)
}

// LoadMining reads the mining section from v and validates it.
func LoadMining(v *viper.Viper) (Mining, error) {
	m := Mining{
		Algorithm:       v.GetString(KeyAlgorithm),
		ConfidenceBasis: v.GetString(KeyConfidenceBasis),
		MinConfidence:   v.GetFloat64(KeyMinConfidence),
		MinSupport:      v.GetInt(KeyMinSupport),
		Workers:         v.GetInt(KeyWorkers),
	}
	if err := m.Validate(); err != nil {
		return Mining{}, err
	}
	return m, nil
}

// Validate checks thresholds and names.
func (m Mining) Validate() error {
	if err := common.ValidateThresholds(m.MinSupport, m.MinConfidence); err != nil {
		return err
	}
	if _, err := mining.ParseAlgorithm(m.Algorithm); err != nil {
		return fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	if _, err := rules.ParseBasis(m.ConfidenceBasis); err != nil {
		return err
	}
	if m.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", common.ErrInvalidConfig, m.Workers)
	}
	return nil
}

// EngineConfig converts m into an engine configuration.
func (m Mining) EngineConfig() engine.Config {
	return engine.Config{
		Algorithm:     mining.Algorithm(m.Algorithm),
		Basis:         rules.ConfidenceBasis(m.ConfidenceBasis),
		MinSupport:    m.MinSupport,
		MinConfidence: m.MinConfidence,
		Workers:       m.Workers,
	}
}

// DatabasePath returns the expanded, cleaned database path from v.
func DatabasePath(v *viper.Viper) string {
	path := v.GetString(KeyDatabasePath)
	if path == "" {
		path = DefaultDatabasePath
	}
	if path == ":memory:" {
		return path
	}
	return filepath.Clean(ExpandPath(path))
}
