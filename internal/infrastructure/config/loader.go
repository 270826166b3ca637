// Package config loads service configuration from a YAML file, then applies
// environment overrides declared with `env:"NAME"` struct tags.
//
// Before the YAML file is read, .env files are loaded into the process
// environment. ENV_FILE, when set, names the only file loaded; otherwise
// .env.local is loaded first and .env fills whatever it left unset.
//
//	type Settings struct {
//	    Port int    `yaml:"port" env:"PORT"`
//	    URL  string `yaml:"url"  env:"UPSTREAM_URL"`
//	}
//
//	cfg, err := config.LoadWithDefaults[Settings]("config.yml", applyDefaults)
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConfigPathEnv names the variable that overrides the config file location.
const ConfigPathEnv = "CONFIG_PATH"

var durationType = reflect.TypeOf(time.Duration(0))

// Load reads the YAML file at path into a new T and applies env overrides.
func Load[T any](path string) (*T, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("load environment files: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	cfg := new(T)
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	ApplyEnv(cfg)
	return cfg, nil
}

// LoadWithDefaults is Load followed by setDefaults. Env overrides are applied
// again afterwards so an environment value always beats a default.
func LoadWithDefaults[T any](path string, setDefaults func(*T)) (*T, error) {
	cfg, err := Load[T](path)
	if err != nil {
		return nil, err
	}

	if setDefaults != nil {
		setDefaults(cfg)
		ApplyEnv(cfg)
	}
	return cfg, nil
}

// GetConfigPath returns $CONFIG_PATH, or defaultPath when it is unset.
func GetConfigPath(defaultPath string) string {
	if path := os.Getenv(ConfigPathEnv); path != "" {
		return path
	}
	return defaultPath
}

func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		return loadEnvFile(envFile)
	}
	if err := loadEnvFile(".env.local"); err != nil {
		return err
	}
	return loadEnvFile(".env")
}

func loadEnvFile(name string) error {
	if err := godotenv.Load(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", name, err)
	}
	return nil
}

// ApplyEnv walks cfg (a pointer to a struct) and sets every field carrying an
// `env` tag whose variable is set and parses for the field's kind. Nested
// structs and pointers to structs are walked recursively.
func ApplyEnv(cfg any) {
	v := reflect.ValueOf(cfg)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}
	applyEnvToStruct(v)
}

func applyEnvToStruct(v reflect.Value) {
	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := range v.NumField() {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}

		switch {
		case field.Kind() == reflect.Struct:
			applyEnvToStruct(field)
			continue
		case field.Kind() == reflect.Pointer && field.Type().Elem().Kind() == reflect.Struct:
			if field.IsNil() {
				field.Set(reflect.New(field.Type().Elem()))
			}
			applyEnvToStruct(field.Elem())
			continue
		}

		name := t.Field(i).Tag.Get("env")
		if name == "" {
			continue
		}
		if raw, ok := os.LookupEnv(name); ok && raw != "" {
			setField(field, raw)
		}
	}
}

// setField converts raw to the field's kind. Values that do not parse leave
// the field untouched.
func setField(field reflect.Value, raw string) {
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == durationType {
			if d, err := time.ParseDuration(raw); err == nil {
				field.SetInt(int64(d))
			}
			return
		}
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			field.SetInt(n)
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if n, err := strconv.ParseUint(raw, 10, 64); err == nil {
			field.SetUint(n)
		}
	case reflect.Float32, reflect.Float64:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			field.SetFloat(f)
		}
	case reflect.Bool:
		field.SetBool(parseBool(raw))
	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(raw, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	default:
	}
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}
