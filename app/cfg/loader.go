package cfg

import (
	"cmp"
	"fmt"
	"log/slog"
	"os"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Application configuration
	SourcesDir string `long:"sources-dir" env:"SOURCES_DIR" description:"Directory containing source definition files (embedded defaults used when unset)"`
	DataDir    string `long:"data-dir" env:"DATA_DIR" default:"." description:"Directory feed files are written to"`
	DBPath     string `long:"db-path" env:"DB_PATH" default:"runs.db" description:"Path to the run history database"`
	Port       string `long:"port" env:"PORT" default:"8080" description:"HTTP server port (serve command)"`
	BaseUrl    string `long:"base-url" env:"BASE_URL" description:"Public base URL feeds are served from (e.g., https://owais5514.github.io/AUST-rss)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36" description:"User agent string for HTTP requests"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`

	Args struct {
		Command string `positional-arg-name:"command" description:"One of: run, validate, healthcheck, serve (default: run)"`
	} `positional-args:"yes"`
}

var globalCfg *Cfg

// Load parses environment variables and command-line flags. The second
// return value is the requested command; a nil Cfg with a nil error means
// help was shown.
func Load() (*Cfg, string, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, "", nil
			}
		}
		return nil, "", fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		SourcesDir: raw.SourcesDir,
		DataDir:    raw.DataDir,
		DBPath:     raw.DBPath,
		Port:       raw.Port,
		BaseUrl:    raw.BaseUrl,
		UserAgent:  raw.UserAgent,
		Debug:      raw.Debug,
		Version:    GetVersion(),
	}

	applyLogLevel(cfg.Debug)

	globalCfg = cfg

	return cfg, cmp.Or(raw.Args.Command, "run"), nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyLogLevel(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
