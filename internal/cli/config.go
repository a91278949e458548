package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/geokernel/internal/paths"
	"github.com/mesh-intelligence/geokernel/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "GEOKERNEL"

	cfgKeyDataDir      = "data_dir"
	cfgKeyCompression  = "compression"
	cfgKeyLogLevel     = "log.level"
	cfgKeyLogFormat    = "log.format"
	cfgKeyGradeWorkers = "grade.workers"
	cfgKeyNormalize    = "compare.normalize"
	cfgKeyCheckGeom    = "compare.check_geom_equality"
	cfgKeyCheckAttribs = "compare.check_attrib_equality"
)

// configFile is the layout of config.yaml.
type configFile struct {
	DataDir     string `yaml:"data_dir,omitempty"`
	Compression string `yaml:"compression"`
	Log         struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Grade struct {
		Workers int `yaml:"workers"`
	} `yaml:"grade"`
	Compare struct {
		Normalize           bool `yaml:"normalize"`
		CheckGeomEquality   bool `yaml:"check_geom_equality"`
		CheckAttribEquality bool `yaml:"check_attrib_equality"`
	} `yaml:"compare"`
}

func defaultConfigFile(dataDir string) configFile {
	d := types.DefaultConfig()
	var f configFile
	f.DataDir = dataDir
	f.Compression = d.Compression
	f.Log.Level = d.LogLevel
	f.Log.Format = d.LogFormat
	f.Grade.Workers = d.GradeWorkers
	f.Compare.Normalize = d.Normalize
	f.Compare.CheckGeomEquality = d.CheckGeomEquality
	f.Compare.CheckAttribEquality = d.CheckAttribEquality
	return f
}

// newViper returns a viper instance with defaults and GEOKERNEL_* env
// bindings, reading config.yaml from dir. A missing file is not an error.
func newViper(dir string) (*viper.Viper, error) {
	d := types.DefaultConfig()
	v := viper.New()
	v.SetDefault(cfgKeyCompression, d.Compression)
	v.SetDefault(cfgKeyLogLevel, d.LogLevel)
	v.SetDefault(cfgKeyLogFormat, d.LogFormat)
	v.SetDefault(cfgKeyGradeWorkers, d.GradeWorkers)
	v.SetDefault(cfgKeyNormalize, d.Normalize)
	v.SetDefault(cfgKeyCheckGeom, d.CheckGeomEquality)
	v.SetDefault(cfgKeyCheckAttribs, d.CheckAttribEquality)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// loadConfig resolves the config directory, reads config.yaml and
// returns the effective settings. Flags win over the file.
func loadConfig(f rootFlags) (string, types.Config, error) {
	var cfg types.Config
	dir, err := paths.ResolveConfigDir(f.configDir)
	if err != nil {
		return "", cfg, fmt.Errorf("resolve config dir: %w", err)
	}
	v, err := newViper(dir)
	if err != nil {
		return "", cfg, err
	}

	cfg.DataDir, err = paths.ResolveDataDir(f.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return "", cfg, fmt.Errorf("resolve data dir: %w", err)
	}
	cfg.Compression = v.GetString(cfgKeyCompression)
	cfg.LogLevel = v.GetString(cfgKeyLogLevel)
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	cfg.LogFormat = v.GetString(cfgKeyLogFormat)
	cfg.GradeWorkers = v.GetInt(cfgKeyGradeWorkers)
	cfg.Normalize = v.GetBool(cfgKeyNormalize)
	cfg.CheckGeomEquality = v.GetBool(cfgKeyCheckGeom)
	cfg.CheckAttribEquality = v.GetBool(cfgKeyCheckAttribs)
	return dir, cfg, nil
}

// writeConfigIfMissing creates config.yaml with default values. An
// existing file is left alone.
func writeConfigIfMissing(dir, dataDir string) (bool, error) {
	path := filepath.Join(dir, paths.ConfigFile)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(defaultConfigFile(dataDir))
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
