package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/dkoosis/ptrmux/pkg/demux"
	"github.com/dkoosis/ptrmux/pkg/mapper"
	"github.com/dkoosis/ptrmux/pkg/render"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Bounds accepted for the detection settings.
const (
	MaxLookaheadLimit = 1 << 16
	MaxMultipleLimit  = 64
	MaxWorkers        = 256
)

// Resolution sources recorded in Resolved.Sources.
const (
	SourceFlag    = "flag"
	SourceEnv     = "env"
	SourceFile    = "file"
	SourceDefault = "default"
)

// Flags holds command-line values. A nil field was not given on the command
// line and falls through to lower-priority sources.
type Flags struct {
	ConfigPath   string
	MaxLookahead *int
	MaxMultiple  *int
	Policy       *string
	Format       *string
	Theme        *string
	SampleCoords *int
	Top          *int
	Workers      *int
	Store        *string
	NoColor      *bool
	Verbose      bool
}

// Resolved holds the final configuration after applying all priority rules.
type Resolved struct {
	MaxLookahead int
	MaxMultiple  int
	Policy       demux.Policy
	Format       string
	Theme        string
	SampleCoords int
	Top          int
	Workers      int
	Store        string
	NoColor      bool
	Verbose      bool

	ConfigPath string            // file read, "" when none
	Sources    map[string]string // key -> flag, env, file or default
}

// Resolve merges flags, environment, config file and defaults, then
// validates the result.
func Resolve(flags Flags) (*Resolved, error) {
	file, path, err := LoadFile(flags.ConfigPath)
	if err != nil {
		return nil, err
	}

	mapDefaults := mapper.DefaultOptions()
	r := &Resolved{ConfigPath: path, Sources: make(map[string]string)}

	r.MaxLookahead = resolveInt(r, "max_lookahead", flags.MaxLookahead, "PTRMUX_MAX_LOOKAHEAD",
		positive(file.MaxLookahead), demux.DefaultMaxLookahead)
	r.MaxMultiple = resolveInt(r, "max_multiple", flags.MaxMultiple, "PTRMUX_MAX_MULTIPLE",
		positive(file.MaxMultiple), demux.DefaultMaxMultiple)
	r.SampleCoords = resolveInt(r, "sample_coords", flags.SampleCoords, "PTRMUX_SAMPLE_COORDS",
		file.SampleCoords, mapDefaults.SampleCoords)
	r.Top = resolveInt(r, "top", flags.Top, "PTRMUX_TOP", file.Top, mapDefaults.Top)
	r.Workers = resolveInt(r, "workers", flags.Workers, "PTRMUX_WORKERS",
		positive(file.Workers), runtime.NumCPU())

	policy := resolveString(r, "policy", flags.Policy, "PTRMUX_POLICY", file.Policy, string(demux.Sequential))
	r.Format = resolveString(r, "format", flags.Format, "PTRMUX_FORMAT", file.Format, render.FormatAuto)
	r.Theme = resolveString(r, "theme", flags.Theme, "PTRMUX_THEME", file.Theme, "default")
	r.Store = resolveString(r, "store", flags.Store, "PTRMUX_STORE", file.Store, "")

	// NoColor: CLI > ENV > file > default
	switch {
	case flags.NoColor != nil:
		r.NoColor, r.Sources["no_color"] = *flags.NoColor, SourceFlag
	case getEnvSet("PTRMUX_NO_COLOR", "NO_COLOR"):
		r.NoColor, r.Sources["no_color"] = true, SourceEnv
	case file.NoColor:
		r.NoColor, r.Sources["no_color"] = true, SourceFile
	default:
		r.Sources["no_color"] = SourceDefault
	}
	r.Verbose = flags.Verbose || os.Getenv("PTRMUX_DEBUG") != ""

	p, err := demux.ParsePolicy(policy)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	r.Policy = p

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate rejects out-of-range or unknown settings.
func (r *Resolved) Validate() error {
	if r.MaxLookahead < 1 || r.MaxLookahead > MaxLookaheadLimit {
		return fmt.Errorf("%w: max_lookahead must be in 1..%d, got %d", ErrInvalid, MaxLookaheadLimit, r.MaxLookahead)
	}
	if r.MaxMultiple < 1 || r.MaxMultiple > MaxMultipleLimit {
		return fmt.Errorf("%w: max_multiple must be in 1..%d, got %d", ErrInvalid, MaxMultipleLimit, r.MaxMultiple)
	}
	if r.Policy != demux.Sequential && r.Policy != demux.RoundRobin {
		return fmt.Errorf("%w: unknown policy %q", ErrInvalid, r.Policy)
	}
	if !render.ValidFormat(r.Format) {
		return fmt.Errorf("%w: unknown format %q (expected auto, terminal, llm, json)", ErrInvalid, r.Format)
	}
	if !render.ValidTheme(r.Theme) {
		return fmt.Errorf("%w: unknown theme %q (expected %s)", ErrInvalid, r.Theme, strings.Join(render.ThemeNames, ", "))
	}
	if r.SampleCoords < 0 {
		return fmt.Errorf("%w: sample_coords must not be negative, got %d", ErrInvalid, r.SampleCoords)
	}
	if r.Top < 0 {
		return fmt.Errorf("%w: top must not be negative, got %d", ErrInvalid, r.Top)
	}
	if r.Workers < 1 || r.Workers > MaxWorkers {
		return fmt.Errorf("%w: workers must be in 1..%d, got %d", ErrInvalid, MaxWorkers, r.Workers)
	}
	return nil
}

// DemuxOptions returns the core options for this configuration.
func (r *Resolved) DemuxOptions(logger *zap.Logger) demux.Options {
	return demux.Options{
		MaxLookahead: r.MaxLookahead,
		MaxMultiple:  r.MaxMultiple,
		Policy:       r.Policy,
		Logger:       logger,
	}
}

// MapperOptions returns the report density settings.
func (r *Resolved) MapperOptions() mapper.Options {
	return mapper.Options{
		SampleCoords: r.SampleCoords,
		Top:          r.Top,
		Sparklines:   true,
	}
}

// ThemeName returns the effective theme, mono when colors are disabled.
func (r *Resolved) ThemeName() string {
	if r.NoColor {
		return "mono"
	}
	return r.Theme
}

func resolveInt(r *Resolved, key string, flag *int, env string, file *int, def int) int {
	if flag != nil {
		r.Sources[key] = SourceFlag
		return *flag
	}
	if v := os.Getenv(env); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			r.Sources[key] = SourceEnv
			return n
		}
	}
	if file != nil {
		r.Sources[key] = SourceFile
		return *file
	}
	r.Sources[key] = SourceDefault
	return def
}

func resolveString(r *Resolved, key string, flag *string, env, file, def string) string {
	if flag != nil {
		r.Sources[key] = SourceFlag
		return *flag
	}
	if v := os.Getenv(env); v != "" {
		r.Sources[key] = SourceEnv
		return v
	}
	if file != "" {
		r.Sources[key] = SourceFile
		return file
	}
	r.Sources[key] = SourceDefault
	return def
}

// positive treats a zero file value as unset.
func positive(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}

// getEnvSet reports whether any of keys holds a truthy value. NO_COLOR
// convention treats any non-empty value as set.
func getEnvSet(keys ...string) bool {
	for _, key := range keys {
		val := os.Getenv(key)
		if val == "" {
			continue
		}
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
		return true
	}
	return false
}
