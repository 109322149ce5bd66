package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/proofkit/proofkit/internal/typegen"
	"github.com/proofkit/proofkit/internal/typegen/codegen"
	"github.com/proofkit/proofkit/internal/typegen/metadata"
	"github.com/proofkit/proofkit/internal/typegen/normalize"
)

// FileName is the config file name without extension
const FileName = "proofkit-typegen"

// EnvPrefix prefixes environment overrides, e.g. PROOFKIT_OUT_DIR
const EnvPrefix = "PROOFKIT"

// Config represents the typegen project configuration
type Config struct {
	Sources        []SourceConfig   `mapstructure:"sources"`
	OutDir         string           `mapstructure:"out_dir"`
	GeneratedDir   string           `mapstructure:"generated_dir"`
	Tables         []string         `mapstructure:"tables"`
	Overrides      []OverrideConfig `mapstructure:"overrides"`
	Concurrency    int              `mapstructure:"concurrency"`
	CleanGenerated bool             `mapstructure:"clean_generated"`
	RuntimeModule  string           `mapstructure:"runtime_module"`
	ZodModule      string           `mapstructure:"zod_module"`

	// File is the config file that was read, empty when only defaults apply
	File string `mapstructure:"-"`
	// Dir is the directory relative paths resolve against
	Dir string `mapstructure:"-"`
}

// SourceConfig represents one metadata source
type SourceConfig struct {
	Path   string `mapstructure:"path"`
	Format string `mapstructure:"format"`
}

// OverrideConfig represents one field override
type OverrideConfig struct {
	Table     string `mapstructure:"table"`
	Field     string `mapstructure:"field"`
	Kind      string `mapstructure:"kind"`
	Validator string `mapstructure:"validator"`
	Read      string `mapstructure:"read"`
	Write     string `mapstructure:"write"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("out_dir", "schema")
	v.SetDefault("generated_dir", "generated")
	v.SetDefault("tables", []string{})
	v.SetDefault("concurrency", 1)
	v.SetDefault("clean_generated", false)
	v.SetDefault("runtime_module", codegen.DefaultRuntimeModule)
	v.SetDefault("zod_module", codegen.DefaultZodModule)
}

// Load loads the configuration. When file is empty, proofkit-typegen.{yaml,yml,json}
// is searched for in dir. A .env file next to the config is applied first.
func Load(fs afero.Fs, dir, file string) (*Config, error) {
	v := viper.New()
	v.SetFs(fs)
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
		dir = filepath.Dir(file)
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(dir)
	}

	if err := loadDotEnv(fs, filepath.Join(dir, ".env")); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.File = v.ConfigFileUsed()
	config.Dir = dir

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// loadDotEnv sets variables from path that are not already in the environment
func loadDotEnv(fs afero.Fs, path string) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	vars, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	for key, value := range vars {
		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, value)
		}
	}
	return nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if len(cfg.Sources) == 0 {
		return fmt.Errorf("no metadata sources configured (run `proofkit typegen init` to create %s.yaml)", FileName)
	}
	for i, src := range cfg.Sources {
		if strings.TrimSpace(src.Path) == "" {
			return fmt.Errorf("sources[%d].path is required", i)
		}
		if _, err := metadata.ParseFormat(src.Format); err != nil {
			return fmt.Errorf("sources[%d]: %w", i, err)
		}
	}

	if strings.TrimSpace(cfg.OutDir) == "" {
		return fmt.Errorf("out_dir must not be empty")
	}
	if strings.TrimSpace(cfg.GeneratedDir) == "" {
		return fmt.Errorf("generated_dir must not be empty")
	}
	if filepath.IsAbs(cfg.GeneratedDir) || strings.HasPrefix(filepath.Clean(cfg.GeneratedDir), "..") {
		return fmt.Errorf("generated_dir must be a subdirectory of out_dir, got: %s", cfg.GeneratedDir)
	}
	if filepath.Clean(cfg.GeneratedDir) == "." {
		return fmt.Errorf("generated_dir must differ from out_dir")
	}

	if cfg.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got: %d", cfg.Concurrency)
	}

	for i, o := range cfg.Overrides {
		if strings.TrimSpace(o.Field) == "" {
			return fmt.Errorf("overrides[%d].field is required", i)
		}
	}
	return nil
}

// Resolve makes path relative to the config directory
func (c *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir, path)
}

// SourcePaths returns the resolved path of every source
func (c *Config) SourcePaths() []string {
	paths := make([]string, len(c.Sources))
	for i, src := range c.Sources {
		paths[i] = c.Resolve(src.Path)
	}
	return paths
}

// Options converts the configuration into typegen run options
func (c *Config) Options() (typegen.Options, error) {
	sources := make([]typegen.Source, len(c.Sources))
	for i, src := range c.Sources {
		format, err := metadata.ParseFormat(src.Format)
		if err != nil {
			return typegen.Options{}, fmt.Errorf("sources[%d]: %w", i, err)
		}
		sources[i] = typegen.Source{Path: c.Resolve(src.Path), Format: format}
	}

	overrides := make([]normalize.Override, len(c.Overrides))
	for i, o := range c.Overrides {
		overrides[i] = normalize.Override{
			Table:     o.Table,
			Field:     o.Field,
			Kind:      o.Kind,
			Validator: o.Validator,
			Read:      o.Read,
			Write:     o.Write,
		}
	}

	return typegen.Options{
		Sources:   sources,
		Tables:    c.Tables,
		Overrides: overrides,
		Layout: codegen.Layout{
			OutDir:       c.Resolve(c.OutDir),
			GeneratedDir: c.GeneratedDir,
		},
		Codegen: codegen.Options{
			RuntimeModule: c.RuntimeModule,
			ZodModule:     c.ZodModule,
		},
		Concurrency:    c.Concurrency,
		CleanGenerated: c.CleanGenerated,
	}, nil
}

// Save writes cfg to path. It never replaces an existing file.
func Save(fs afero.Fs, path string, cfg *Config) error {
	v := viper.New()
	v.SetFs(fs)

	sources := make([]map[string]any, len(cfg.Sources))
	for i, src := range cfg.Sources {
		entry := map[string]any{"path": src.Path}
		if src.Format != "" {
			entry["format"] = src.Format
		}
		sources[i] = entry
	}
	v.Set("sources", sources)
	v.Set("out_dir", cfg.OutDir)
	v.Set("generated_dir", cfg.GeneratedDir)
	if len(cfg.Tables) > 0 {
		v.Set("tables", cfg.Tables)
	}
	if cfg.Concurrency > 1 {
		v.Set("concurrency", cfg.Concurrency)
	}
	if cfg.CleanGenerated {
		v.Set("clean_generated", true)
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := v.SafeWriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
