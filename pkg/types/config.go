package types

import "errors"

// Config holds the settings shared by the CLI, the model store and the
// comparison engine.
type Config struct {
	DataDir     string `json:"data_dir" yaml:"data_dir"`
	Compression string `json:"compression" yaml:"compression"`
	LogLevel    string `json:"log_level" yaml:"log_level"`
	LogFormat   string `json:"log_format" yaml:"log_format"`

	// GradeWorkers bounds the number of candidates graded in parallel.
	GradeWorkers int `json:"grade_workers" yaml:"grade_workers"`

	Normalize           bool `json:"normalize" yaml:"normalize"`
	CheckGeomEquality   bool `json:"check_geom_equality" yaml:"check_geom_equality"`
	CheckAttribEquality bool `json:"check_attrib_equality" yaml:"check_attrib_equality"`
}

// Compression codec names.
const (
	CompressionNone = "none"
	CompressionLZ4  = "lz4"
	CompressionZstd = "zstd"
)

// Log settings.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config validation errors.
var (
	ErrCompressionUnknown = errors.New("unknown compression codec")
	ErrLogLevelUnknown    = errors.New("unknown log level")
	ErrLogFormatUnknown   = errors.New("unknown log format")
	ErrWorkersInvalid     = errors.New("grade workers must be positive")
)

var knownCompression = map[string]bool{
	"":              true,
	CompressionNone: true,
	CompressionLZ4:  true,
	CompressionZstd: true,
}

var knownLogLevels = map[string]bool{
	"":            true,
	LogLevelDebug: true,
	LogLevelInfo:  true,
	LogLevelWarn:  true,
	LogLevelError: true,
}

var knownLogFormats = map[string]bool{
	"":            true,
	LogFormatText: true,
	LogFormatJSON: true,
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() Config {
	return Config{
		Compression:         CompressionZstd,
		LogLevel:            LogLevelWarn,
		LogFormat:           LogFormatText,
		GradeWorkers:        4,
		Normalize:           true,
		CheckGeomEquality:   true,
		CheckAttribEquality: true,
	}
}

// Validate checks that the Config is well-formed. Empty string fields
// select defaults and are accepted.
func (c Config) Validate() error {
	if !knownCompression[c.Compression] {
		return ErrCompressionUnknown
	}
	if !knownLogLevels[c.LogLevel] {
		return ErrLogLevelUnknown
	}
	if !knownLogFormats[c.LogFormat] {
		return ErrLogFormatUnknown
	}
	if c.GradeWorkers < 0 {
		return ErrWorkersInvalid
	}
	return nil
}
