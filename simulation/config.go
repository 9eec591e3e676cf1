package simulation

import (
	"context"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// OuterConfig is the file envelope: a kind selector and the definition body.
// The envelope leaves room for other run kinds to share one config file
// format without the inner schema leaking into viper keys.
type OuterConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// Config holds a run definition: the chain's initial values and the decision
// and termination parameters. Field names carry no yaml tags: viper lowercases
// every key it reads, and yaml's default field naming lowercases to match.
type Config struct {
	// Values seeds the chain, node name to initial value.
	Values map[string]int
	// SearchDepth selects the decision procedure: zero for one-step, more
	// for bounded lookahead.
	SearchDepth int
	// MaxRounds caps the run when the chain refuses to settle.
	MaxRounds int
	// RunDeadline optionally bounds the run in wall time, e.g.
	// {duration: 30s}.
	RunDeadline map[string]string
}

// DefaultMaxRounds applies when the file leaves maxRounds unset.
const DefaultMaxRounds = 100

// MaxRoundsOrDefault returns the configured round cap, defaulted.
func (cfg *Config) MaxRoundsOrDefault() int {
	if cfg.MaxRounds <= 0 {
		return DefaultMaxRounds
	}
	return cfg.MaxRounds
}

// WithRunDeadline returns a context extended by the configured deadline, if
// one is specified.
func (cfg *Config) WithRunDeadline(
	ctx context.Context,
) (context.Context, context.CancelFunc, error) {
	if val, ok := cfg.RunDeadline["duration"]; ok {
		duration, err := time.ParseDuration(val)
		if err != nil {
			return nil, nil, err
		}
		innerCtx, cancel := context.WithTimeout(ctx, duration)
		return innerCtx, cancel, nil
	}
	defaultCtx, cancel := context.WithCancel(ctx)
	return defaultCtx, cancel, nil
}

// FromYaml loads a run config from the passed yaml file. Viper reads the
// envelope; the definition body is round-tripped through yaml into the typed
// config, which keeps the inner schema in one place.
func FromYaml(path string) (*Config, error) {
	vp := viper.New()
	vp.SetConfigFile(filepath.Base(path))
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))
	var err error
	if err = vp.ReadInConfig(); err != nil {
		return nil, err
	}

	outerConfig := &OuterConfig{}
	if err = vp.Unmarshal(outerConfig); err != nil {
		return nil, err
	}

	var spec []byte
	if spec, err = yaml.Marshal(outerConfig.Def); err != nil {
		return nil, err
	}

	innerConfig := &Config{}
	if err = yaml.Unmarshal(spec, innerConfig); err != nil {
		return nil, err
	}

	return innerConfig, nil
}
