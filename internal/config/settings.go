// Package config resolves the tool's own settings from flags, environment
// and defaults. Target definitions live in the target package.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nace/disksetup/internal/system"
	"github.com/nace/disksetup/internal/target"
	"github.com/nace/disksetup/internal/volume"
)

// EnvPrefix prefixes every environment override, e.g. DISKSETUP_FSTAB
const EnvPrefix = "DISKSETUP"

// DefaultLockFile serializes concurrent runs
const DefaultLockFile = "/run/disksetup.lock"

// Settings controls a single invocation
type Settings struct {
	File      string `mapstructure:"file"`
	Crypttab  string `mapstructure:"crypttab"`
	Fstab     string `mapstructure:"fstab"`
	Mounts    string `mapstructure:"mounts"`
	LockFile  string `mapstructure:"lock_file"`
	Verbose   bool   `mapstructure:"verbose"`
	Quiet     bool   `mapstructure:"quiet"`
	NoColor   bool   `mapstructure:"no_color"`
	Debug     bool   `mapstructure:"debug"`
	DryRun    bool   `mapstructure:"dry_run"`
	LogFormat string `mapstructure:"log_format"`
}

// Paths returns the table locations the inspector reads
func (s *Settings) Paths() volume.Paths {
	return volume.Paths{
		Crypttab: s.Crypttab,
		Fstab:    s.Fstab,
		Mounts:   s.Mounts,
	}
}

// flag name -> settings key
var flagKeys = map[string]string{
	"file":       "file",
	"crypttab":   "crypttab",
	"fstab":      "fstab",
	"mounts":     "mounts",
	"lock-file":  "lock_file",
	"verbose":    "verbose",
	"quiet":      "quiet",
	"no-color":   "no_color",
	"debug":      "debug",
	"dry-run":    "dry_run",
	"log-format": "log_format",
}

// RegisterFlags adds the settings flags to flags
func RegisterFlags(flags *pflag.FlagSet) {
	paths := volume.DefaultPaths()

	flags.StringP("file", "f", target.DefaultConfigPath, "Path to the target configuration file")
	flags.String("crypttab", paths.Crypttab, "Path to the crypttab file")
	flags.String("fstab", paths.Fstab, "Path to the fstab file")
	flags.String("mounts", paths.Mounts, "Path to the live mount table")
	flags.String("lock-file", DefaultLockFile, "Lock file guarding against concurrent runs")
	flags.BoolP("verbose", "v", false, "Verbose output")
	flags.BoolP("quiet", "q", false, "Quiet mode (suppress non-error output)")
	flags.Bool("no-color", false, "Disable color output")
	flags.Bool("debug", false, "Debug mode (show commands)")
	flags.Bool("dry-run", false, "Print state-changing commands instead of running them")
	flags.String("log-format", "text", "Log format: text or json")

	for _, name := range []string{"crypttab", "fstab", "mounts", "lock-file"} {
		_ = flags.MarkHidden(name)
	}
}

// Load resolves settings. Precedence, highest first: flags set on the
// command line, DISKSETUP_* environment variables, flag defaults.
func Load(flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			return nil, fmt.Errorf("flag --%s is not registered", name)
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, system.Wrap(system.KindConfig, err, "failed to decode settings")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks settings values
func (s *Settings) Validate() error {
	switch strings.ToLower(s.LogFormat) {
	case "text", "json":
	default:
		return system.ConfigErrorf("invalid log format %q (want text or json)", s.LogFormat)
	}
	if s.Verbose && s.Quiet {
		return system.ConfigErrorf("--verbose and --quiet are mutually exclusive")
	}
	if s.File == "" {
		return system.ConfigErrorf("no configuration file given")
	}
	return nil
}
