package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tailscale/hujson"
)

var (
	ErrConfigInvalid      = errors.New("config: invalid")
	ErrConfigFileNotFound = errors.New("config: file not found")
)

const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// FileName is the optional per-project config file.
const FileName = ".teamtodo.json"

const envPrefix = "TEAMTODO_"

type RuntimeConfig struct {
	Backend              string
	StorePath            string
	Namespace            string
	AutosaveInterval     time.Duration
	ToastDuration        time.Duration
	DesktopNotifications bool
	AvatarBaseURL        string
	DefaultUserName      string
	LogFile              string
	SchedulerBuffer      int

	Sources Sources
}

// Sources records which files contributed to the config.
type Sources struct {
	Global  string
	Project string
}

func Default() RuntimeConfig {
	return RuntimeConfig{
		Backend:          BackendSQLite,
		AutosaveInterval: 30 * time.Second,
		ToastDuration:    3 * time.Second,
		AvatarBaseURL:    "https://i.pravatar.cc/150?u=",
		DefaultUserName:  "My User",
		SchedulerBuffer:  64,
	}
}

// fileConfig is the on-disk shape. Pointers tell "unset" apart from zero.
type fileConfig struct {
	Backend              *string `json:"backend"`
	StorePath            *string `json:"store_path"`
	Namespace            *string `json:"namespace"`
	AutosaveInterval     *string `json:"autosave_interval"`
	ToastDuration        *string `json:"toast_duration"`
	DesktopNotifications *bool   `json:"desktop_notifications"`
	AvatarBaseURL        *string `json:"avatar_base_url"`
	DefaultUserName      *string `json:"default_user_name"`
	LogFile              *string `json:"log_file"`
	SchedulerBuffer      *int    `json:"scheduler_buffer"`
}

// Overrides carries command-line values. Nil fields were not given.
type Overrides struct {
	Backend              *string
	StorePath            *string
	AutosaveInterval     *time.Duration
	LogFile              *string
	DesktopNotifications *bool
}

type LoadInput struct {
	WorkDir    string
	ConfigPath string
	Env        map[string]string
	Overrides  Overrides
}

// Load resolves the config with the following precedence (highest wins):
// defaults, the global file, the project or explicit file, TEAMTODO_*
// environment variables, then command-line overrides.
func Load(in LoadInput) (RuntimeConfig, error) {
	workDir := in.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return RuntimeConfig{}, fmt.Errorf("cannot get working directory: %w", err)
		}
		workDir = wd
	}

	cfg := Default()

	if path := globalPath(in.Env); path != "" {
		fc, loaded, err := loadFile(path, false)
		if err != nil {
			return RuntimeConfig{}, err
		}
		if loaded {
			if cfg, err = merge(cfg, fc); err != nil {
				return RuntimeConfig{}, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
			}
			cfg.Sources.Global = path
		}
	}

	projectPath, mustExist := filepath.Join(workDir, FileName), false
	if in.ConfigPath != "" {
		projectPath, mustExist = in.ConfigPath, true
		if !filepath.IsAbs(projectPath) {
			projectPath = filepath.Join(workDir, projectPath)
		}
	}
	fc, loaded, err := loadFile(projectPath, mustExist)
	if err != nil {
		return RuntimeConfig{}, err
	}
	if loaded {
		if cfg, err = merge(cfg, fc); err != nil {
			return RuntimeConfig{}, fmt.Errorf("%w %s: %w", ErrConfigInvalid, projectPath, err)
		}
		cfg.Sources.Project = projectPath
	}

	cfg = FromEnv(cfg, in.Env)
	cfg = applyOverrides(cfg, in.Overrides)

	if err := cfg.Validate(); err != nil {
		return RuntimeConfig{}, err
	}
	cfg.StorePath = resolveStorePath(cfg, workDir, in.Env)
	return cfg, nil
}

func (c RuntimeConfig) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendFile, BackendMemory:
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrConfigInvalid, c.Backend)
	}
	if c.AutosaveInterval < 0 {
		return fmt.Errorf("%w: autosave_interval must not be negative", ErrConfigInvalid)
	}
	if c.ToastDuration <= 0 {
		return fmt.Errorf("%w: toast_duration must be positive", ErrConfigInvalid)
	}
	if c.SchedulerBuffer <= 0 {
		return fmt.Errorf("%w: scheduler_buffer must be positive", ErrConfigInvalid)
	}
	if strings.TrimSpace(c.DefaultUserName) == "" {
		return fmt.Errorf("%w: default_user_name is required", ErrConfigInvalid)
	}
	return nil
}

// EnvMap turns os.Environ output into a map.
func EnvMap(environ []string) map[string]string {
	out := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			out[k] = v
		}
	}
	return out
}

// FromEnv applies TEAMTODO_* variables. Malformed values are ignored.
func FromEnv(base RuntimeConfig, env map[string]string) RuntimeConfig {
	cfg := base
	if v, ok := getEnvString(env, "BACKEND"); ok {
		cfg.Backend = strings.ToLower(v)
	}
	if v, ok := getEnvString(env, "STORE"); ok {
		cfg.StorePath = v
	}
	if v, ok := getEnvString(env, "NAMESPACE"); ok {
		cfg.Namespace = v
	}
	if v, ok := getEnvDuration(env, "AUTOSAVE_INTERVAL"); ok && v >= 0 {
		cfg.AutosaveInterval = v
	}
	if v, ok := getEnvDuration(env, "TOAST_DURATION"); ok && v > 0 {
		cfg.ToastDuration = v
	}
	if v, ok := getEnvBool(env, "DESKTOP_NOTIFICATIONS"); ok {
		cfg.DesktopNotifications = v
	}
	if v, ok := getEnvString(env, "AVATAR_BASE_URL"); ok {
		cfg.AvatarBaseURL = v
	}
	if v, ok := getEnvString(env, "DEFAULT_USER_NAME"); ok {
		cfg.DefaultUserName = v
	}
	if v, ok := getEnvString(env, "LOG_FILE"); ok {
		cfg.LogFile = v
	}
	if v, ok := getEnvInt(env, "SCHEDULER_BUFFER"); ok && v > 0 {
		cfg.SchedulerBuffer = v
	}
	return cfg
}

func applyOverrides(cfg RuntimeConfig, o Overrides) RuntimeConfig {
	if o.Backend != nil {
		cfg.Backend = strings.ToLower(*o.Backend)
	}
	if o.StorePath != nil {
		cfg.StorePath = *o.StorePath
	}
	if o.AutosaveInterval != nil {
		cfg.AutosaveInterval = *o.AutosaveInterval
	}
	if o.LogFile != nil {
		cfg.LogFile = *o.LogFile
	}
	if o.DesktopNotifications != nil {
		cfg.DesktopNotifications = *o.DesktopNotifications
	}
	return cfg
}

func globalPath(env map[string]string) string {
	if xdg := env["XDG_CONFIG_HOME"]; xdg != "" {
		return filepath.Join(xdg, "teamtodo", "config.json")
	}
	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "teamtodo", "config.json")
	}
	return ""
}

func dataDir(env map[string]string) string {
	if xdg := env["XDG_DATA_HOME"]; xdg != "" {
		return filepath.Join(xdg, "teamtodo")
	}
	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".local", "share", "teamtodo")
	}
	return ""
}

// resolveStorePath picks a per-backend default under the data directory and
// makes relative paths absolute against workDir. The sqlite ":memory:"
// name is kept as is.
func resolveStorePath(cfg RuntimeConfig, workDir string, env map[string]string) string {
	if cfg.Backend == BackendMemory {
		return ""
	}
	path := cfg.StorePath
	if path == "" {
		name := "teamtodo.db"
		if cfg.Backend == BackendFile {
			name = "teamtodo.json"
		}
		dir := dataDir(env)
		if dir == "" {
			dir = workDir
		}
		return filepath.Join(dir, name)
	}
	if strings.HasPrefix(path, ":memory:") {
		return path
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, path)
	}
	return path
}

func loadFile(path string, mustExist bool) (fileConfig, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if mustExist {
				return fileConfig{}, false, fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
			}
			return fileConfig{}, false, nil
		}
		return fileConfig{}, false, fmt.Errorf("read config %s: %w", path, err)
	}
	fc, err := parse(data)
	if err != nil {
		return fileConfig{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}
	return fc, true, nil
}

func parse(data []byte) (fileConfig, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSONC: %w", err)
	}
	var fc fileConfig
	if err := json.Unmarshal(standardized, &fc); err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSON: %w", err)
	}
	return fc, nil
}

func merge(base RuntimeConfig, fc fileConfig) (RuntimeConfig, error) {
	if fc.Backend != nil {
		base.Backend = strings.ToLower(*fc.Backend)
	}
	if fc.StorePath != nil {
		base.StorePath = *fc.StorePath
	}
	if fc.Namespace != nil {
		base.Namespace = *fc.Namespace
	}
	if fc.AutosaveInterval != nil {
		d, err := time.ParseDuration(*fc.AutosaveInterval)
		if err != nil {
			return base, fmt.Errorf("autosave_interval: %w", err)
		}
		base.AutosaveInterval = d
	}
	if fc.ToastDuration != nil {
		d, err := time.ParseDuration(*fc.ToastDuration)
		if err != nil {
			return base, fmt.Errorf("toast_duration: %w", err)
		}
		base.ToastDuration = d
	}
	if fc.DesktopNotifications != nil {
		base.DesktopNotifications = *fc.DesktopNotifications
	}
	if fc.AvatarBaseURL != nil {
		base.AvatarBaseURL = *fc.AvatarBaseURL
	}
	if fc.DefaultUserName != nil {
		base.DefaultUserName = *fc.DefaultUserName
	}
	if fc.LogFile != nil {
		base.LogFile = *fc.LogFile
	}
	if fc.SchedulerBuffer != nil {
		base.SchedulerBuffer = *fc.SchedulerBuffer
	}
	return base, nil
}

func getEnvString(env map[string]string, name string) (string, bool) {
	raw := strings.TrimSpace(env[envPrefix+name])
	return raw, raw != ""
}

func getEnvInt(env map[string]string, name string) (int, bool) {
	raw, ok := getEnvString(env, name)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvDuration(env map[string]string, name string) (time.Duration, bool) {
	raw, ok := getEnvString(env, name)
	if !ok {
		return 0, false
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(env map[string]string, name string) (bool, bool) {
	raw, ok := getEnvString(env, name)
	if !ok {
		return false, false
	}
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
