package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"hmmkit/common"
	"hmmkit/core/hmm"
)

type ModelConfig struct {
	States     int         `mapstructure:"states"`
	Transition [][]float64 `mapstructure:"transition"`
	Emission   [][]float64 `mapstructure:"emission"`
	Prior      []float64   `mapstructure:"prior"`
}

type TrainConfig struct {
	Method        string
	Epsilon       float64
	MaxIterations int
	MixedTime     int
	Seed          uint64
	TieBreak      string
	Relabel       bool
	Strict        bool
}

type LogSection struct {
	BriefMode      string
	Level          string
	Path           string
	InConsole      bool
	ShowLine       bool
	RotationMaxAge int
	RotationTime   int
	RotationSize   int
	ModuleLevels   map[string]string
}

type LocalConfig struct {
	Path         string // 实际读取的配置文件
	Model        ModelConfig
	Sequence     string
	SequenceFile string
	Train        TrainConfig
	Log          LogSection
	PlotPath     string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("train.method", string(common.METHOD_EM))
	v.SetDefault("train.epsilon", 1e-6)
	v.SetDefault("train.max_iterations", 100)
	v.SetDefault("train.mixed_time", 5)
	v.SetDefault("train.seed", 1)
	v.SetDefault("train.tie_break", "last")
	v.SetDefault("train.relabel", true)
	v.SetDefault("train.strict", false)

	v.SetDefault("log.brief_mode", "")
	v.SetDefault("log.level", "INFO")
	v.SetDefault("log.in_console", true)
	v.SetDefault("log.show_line", false)
	v.SetDefault("log.rotation_max_age", 7)
	v.SetDefault("log.rotation_time", 24)
	v.SetDefault("log.rotation_size", 30)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("hmmkit")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)
	return v
}

// InitLocalConfig 读取配置：
// 若命令行设置了配置文件，则直接使用；
// 若未设置，则在HMMKIT_CFG_PATH下寻找hmmkit_config.yaml
func InitLocalConfig(cmd *cobra.Command) (*LocalConfig, error) {
	flag := cmd.Flags().Lookup("config")
	if flag == nil {
		panic(fmt.Errorf("cmd %s has no config flag", cmd.Name()))
	}
	return LoadConfig(flag.Value.String())
}

// LoadConfig reads path, or hmmkit_config.* under $HMMKIT_CFG_PATH when
// path is empty.
func LoadConfig(path string) (*LocalConfig, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		altPath := os.Getenv("HMMKIT_CFG_PATH")
		if altPath == "" {
			altPath = "."
		}
		v.AddConfigPath(altPath)
		v.SetConfigName("hmmkit_config")
	}
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*LocalConfig, error) {
	lc := &LocalConfig{Path: v.ConfigFileUsed()}
	if err := v.UnmarshalKey("model", &lc.Model); err != nil {
		return nil, errors.Wrap(err, "decode model section")
	}
	lc.Sequence = v.GetString("sequence")
	lc.SequenceFile = v.GetString("sequence_file")
	lc.PlotPath = v.GetString("output.plot")

	lc.Train = TrainConfig{
		Method:        v.GetString("train.method"),
		Epsilon:       v.GetFloat64("train.epsilon"),
		MaxIterations: v.GetInt("train.max_iterations"),
		MixedTime:     v.GetInt("train.mixed_time"),
		Seed:          v.GetUint64("train.seed"),
		TieBreak:      v.GetString("train.tie_break"),
		Relabel:       v.GetBool("train.relabel"),
		Strict:        v.GetBool("train.strict"),
	}
	lc.Log = LogSection{
		BriefMode:      v.GetString("log.brief_mode"),
		Level:          v.GetString("log.level"),
		Path:           v.GetString("log.path"),
		InConsole:      v.GetBool("log.in_console"),
		ShowLine:       v.GetBool("log.show_line"),
		RotationMaxAge: v.GetInt("log.rotation_max_age"),
		RotationTime:   v.GetInt("log.rotation_time"),
		RotationSize:   v.GetInt("log.rotation_size"),
		ModuleLevels:   v.GetStringMapString("log.module_levels"),
	}
	return lc, nil
}

func (lc *LocalConfig) LogConfig() *common.LogConfig {
	special := make(map[string]common.LOG_LEVEL, len(lc.Log.ModuleLevels))
	for module, level := range lc.Log.ModuleLevels {
		special["["+strings.ToUpper(strings.Trim(module, "[]"))+"]"] = common.ParseLogLevel(level)
	}
	return &common.LogConfig{
		BriefMode:          strings.ToUpper(lc.Log.BriefMode),
		ModuleSpecialLevel: special,
		LogPath:            lc.Log.Path,
		LogLevel:           common.ParseLogLevel(lc.Log.Level),
		RotationMaxAge:     lc.Log.RotationMaxAge,
		RotationTime:       lc.Log.RotationTime,
		RotationSize:       lc.Log.RotationSize,
		ShowLine:           lc.Log.ShowLine,
		LogInConsole:       lc.Log.InConsole,
	}
}

// ModelParams builds the initial parameters, checking the declared state
// count against the matrices.
func (lc *LocalConfig) ModelParams() (*hmm.Params, error) {
	m := lc.Model
	if m.States > 0 && len(m.Transition) != m.States {
		return nil, errors.Wrapf(hmm.ErrDimensionMismatch,
			"model declares %d states but transition has %d rows", m.States, len(m.Transition))
	}
	var prior []float64
	if len(m.Prior) > 0 {
		prior = m.Prior
	}
	return hmm.NewParams(m.Transition, m.Emission, prior)
}

// ObservationSequence returns the inline sequence, or the content of
// sequence_file when no inline sequence is set.
func (lc *LocalConfig) ObservationSequence() (hmm.Sequence, error) {
	raw := lc.Sequence
	if raw == "" && lc.SequenceFile != "" {
		data, err := os.ReadFile(lc.SequenceFile)
		if err != nil {
			return nil, errors.Wrapf(err, "read sequence file %s", lc.SequenceFile)
		}
		raw = string(data)
	}
	if raw == "" {
		return nil, errors.New("no observation sequence configured")
	}
	return hmm.ParseSequence(raw)
}

func (lc *LocalConfig) TrainMethod() (common.TrainMethod, error) {
	return common.ParseTrainMethod(lc.Train.Method)
}

func (lc *LocalConfig) TrainOptions() hmm.TrainOptions {
	return hmm.TrainOptions{
		Epsilon:       lc.Train.Epsilon,
		MaxIterations: lc.Train.MaxIterations,
		MixedTime:     lc.Train.MixedTime,
	}
}
