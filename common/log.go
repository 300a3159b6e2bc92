package common

import (
	"log"
	"os"
	"strings"
	"sync"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 日志级别，int类型，内部接口使用常量
type LOG_LEVEL int

const (
	LEVEL_DEBUG LOG_LEVEL = iota
	LEVEL_INFO
	LEVEL_WARN
	LEVEL_ERROR
)

var (
	LOG_LEVEL_Name = map[LOG_LEVEL]string{
		0: "DEBUG",
		1: "INFO",
		2: "WARN",
		3: "ERROR",
	}
	LOG_LEVEL_Value = map[string]LOG_LEVEL{
		"DEBUG": 0,
		"INFO":  1,
		"WARN":  2,
		"ERROR": 3,
	}
)

// ParseLogLevel maps a level name to LOG_LEVEL, falling back to INFO.
func ParseLogLevel(name string) LOG_LEVEL {
	if lvl, ok := LOG_LEVEL_Value[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return lvl
	}
	return LEVEL_INFO
}

const (
	LOG_MODE_DEV  = "DEV"
	LOG_MODE_PROD = "PROD"
)

type LogConfig struct {
	BriefMode          string
	ModuleSpecialLevel map[string]LOG_LEVEL // 模块特别指定的日志级别

	LogPath        string // 为空时不写文件
	LogLevel       LOG_LEVEL
	RotationMaxAge int // 日志的保存期限(天)
	RotationTime   int // 日志rotation的间隔(小时)
	RotationSize   int // 日志rotation的大小(MB)
	ShowLine       bool
	LogInConsole   bool
}

// 若未设置配置，则按照DEV模式设置
func DefaultLogConfig(isDEV bool) *LogConfig {
	if isDEV {
		return defaultBriefLogConfigForDEV()
	}

	return defaultBriefLogConfigForPROD()
}

// DEV模式只输出到控制台，训练的每轮迭代都可见
func defaultBriefLogConfigForDEV() *LogConfig {
	return &LogConfig{
		LogLevel:     LEVEL_DEBUG,
		ShowLine:     true,
		LogInConsole: true,
	}
}

func defaultBriefLogConfigForPROD() *LogConfig {
	return &LogConfig{
		LogPath:        "./hmmkit.log",
		LogLevel:       LEVEL_INFO,
		RotationMaxAge: 7,
		RotationTime:   24,
		RotationSize:   30,
		ShowLine:       false,
		LogInConsole:   false,
	}
}

func adjustLogConfig(name string, lc *LogConfig) *LogConfig {
	if lc.BriefMode != "" {
		return DefaultLogConfig(lc.BriefMode != LOG_MODE_PROD)
	}

	newC := *lc
	// 模块名不区分大小写，配置中统一为大写
	if lvl, ok := lc.ModuleSpecialLevel[strings.ToUpper(name)]; ok {
		newC.LogLevel = lvl
	}
	return &newC
}

func zapLevelOf(lvl LOG_LEVEL) zapcore.Level {
	switch lvl {
	case LEVEL_DEBUG:
		return zap.DebugLevel
	case LEVEL_INFO:
		return zap.InfoLevel
	case LEVEL_WARN:
		return zap.WarnLevel
	case LEVEL_ERROR:
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

func newWriteSyncer(lcc *LogConfig) zapcore.WriteSyncer {
	var syncers []zapcore.WriteSyncer
	if lcc.LogInConsole {
		syncers = append(syncers, zapcore.AddSync(os.Stdout))
	}
	if lcc.LogPath != "" {
		rotationWriter, err := rotatelogs.New(
			lcc.LogPath+".%Y%m%d%H",
			rotatelogs.WithRotationTime(time.Duration(lcc.RotationTime)*time.Hour),
			rotatelogs.WithRotationSize(int64(lcc.RotationSize*1024*1024)),
			rotatelogs.WithMaxAge(time.Hour*24*time.Duration(lcc.RotationMaxAge)),
		)
		if err != nil {
			log.Fatalf("new rotation log failed, %s", err)
		}
		syncers = append(syncers, zapcore.AddSync(rotationWriter))
	}
	if len(syncers) == 0 {
		return zapcore.AddSync(os.Stderr)
	}
	return zapcore.NewMultiWriteSyncer(syncers...)
}

func NewSugaredLogger(name string, lc *LogConfig) *zap.SugaredLogger {
	lcc := adjustLogConfig(name, lc)

	zapLevel := zapLevelOf(lcc.LogLevel)
	priorityLevel := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapLevel
	})

	customLevelEncoder := func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString("[" + level.CapitalString() + "]")
	}
	customTimeEncoder := func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format("2006-01-02 15:04:05.000"))
	}
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "line",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    customLevelEncoder,
		EncodeTime:     customTimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), newWriteSyncer(lcc), priorityLevel)
	logger := zap.New(core).Named(name)

	var opts []zap.Option
	if lcc.ShowLine {
		opts = append(opts, zap.AddCaller())
	}
	//logger最终是装载到HMMLogger中使用的，因此这里跳过1层调用
	opts = append(opts, zap.AddCallerSkip(1))
	logger = logger.WithOptions(opts...)

	return logger.Sugar()
}

const (
	MODULE_HMM    = "[HMM]"
	MODULE_TRAIN  = "[Train]"
	MODULE_RUNNER = "[Runner]"
	MODULE_CLI    = "[CLI]"
)

type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
}

type HMMLogger struct {
	zlog  *zap.SugaredLogger
	name  string
	mutex sync.RWMutex
}

func (l *HMMLogger) Logger() *zap.SugaredLogger {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return l.zlog
}

func (l *HMMLogger) Debug(args ...interface{}) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	l.zlog.Debug(args...)
}

func (l *HMMLogger) Debugf(format string, args ...interface{}) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	l.zlog.Debugf(format, args...)
}

func (l *HMMLogger) Error(args ...interface{}) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	l.zlog.Error(args...)
}

func (l *HMMLogger) Errorf(format string, args ...interface{}) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	l.zlog.Errorf(format, args...)
}

func (l *HMMLogger) Info(args ...interface{}) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	l.zlog.Info(args...)
}

func (l *HMMLogger) Infof(format string, args ...interface{}) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	l.zlog.Infof(format, args...)
}

func (l *HMMLogger) Warn(args ...interface{}) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	l.zlog.Warn(args...)
}

func (l *HMMLogger) Warnf(format string, args ...interface{}) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	l.zlog.Warnf(format, args...)
}

func (l *HMMLogger) Sync() error {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return l.zlog.Sync()
}

func (l *HMMLogger) SetLogger(logger *zap.SugaredLogger) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.zlog = logger
}

var (
	hmmLoggersMap = make(map[string]*HMMLogger)
	loggerMutex   sync.RWMutex
	hmmLogConfig  *LogConfig
)

func GetLogger(name string) *HMMLogger {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()

	if logger, ok := hmmLoggersMap[name]; ok {
		return logger
	}

	if hmmLogConfig == nil {
		hmmLogConfig = DefaultLogConfig(true)
	}

	logger := &HMMLogger{
		name: name,
		zlog: NewSugaredLogger(name, hmmLogConfig),
	}
	hmmLoggersMap[name] = logger

	return logger
}

// 在获取日志对象之前进行配置设置，已创建的日志对象会按新配置重建
func SetLogConfig(config *LogConfig) {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()

	hmmLogConfig = config
	for _, logger := range hmmLoggersMap {
		logger.SetLogger(NewSugaredLogger(logger.name, hmmLogConfig))
	}
}
