// Package config parses the CLI flags and optional INI configuration
// file into an immutable Options value. This is the one place
// command-line and file parsing happens; every other package only
// ever sees the resulting Options.
package config

import (
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"pacproxy/internal/core/domain"
)

const (
	DefaultLogLevel = LogLevelInfo
)

// Parse builds Options from args (normally os.Args[1:]). CLI flags
// always win over the INI config file; the file only supplies a
// fallback wpad_url when --wpad-url was not given.
func Parse(args []string) (*Options, error) {
	fs := flag.NewFlagSet("pacproxy", flag.ContinueOnError)

	configPath := fs.StringP("config", "c", "", "path to an INI config file")
	port := fs.Uint16P("port", "p", 0, "port to listen on (required)")
	forceProxy := fs.StringP("force-proxy", "F", "", "force every connection through this route: DIRECT or PROXY host[:port]")
	wpadURL := fs.String("wpad-url", "", "fixed PAC script URL, skips WPAD discovery")
	loglevel := fs.String("loglevel", string(DefaultLogLevel), "one of DEBUG, INFO, WARNING, ERROR")
	systemd := fs.Bool("systemd", false, "announce readiness and log to the systemd journal")
	metricsPort := fs.Int("metrics-port", 0, "port for the /metrics endpoint; 0 derives port+1, -1 disables it")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("config: bind flags: %w", err)
	}

	if *configPath != "" {
		v.SetConfigFile(*configPath)
		v.SetConfigType("ini")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", *configPath, err)
		}
	}

	if !fs.Changed("port") {
		return nil, fmt.Errorf("config: --port is required")
	}

	resolvedWPADURL := *wpadURL
	if resolvedWPADURL == "" && *configPath != "" {
		resolvedWPADURL = v.GetString("wpad.url")
	}

	level := LogLevel(strings.ToUpper(*loglevel))
	switch level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError:
	default:
		return nil, domain.NewConfigValidationError("loglevel", *loglevel, "must be DEBUG, INFO, WARNING, or ERROR")
	}

	opts := &Options{
		Port:        *port,
		WPADURL:     resolvedWPADURL,
		Systemd:     *systemd,
		LogLevel:    level,
		MetricsPort: *metricsPort,
		ConfigPath:  *configPath,
	}

	if *forceProxy != "" {
		suggestion, err := domain.ParseProxySuggestionStrict(*forceProxy)
		if err != nil {
			return nil, domain.NewConfigValidationError("force-proxy", *forceProxy, err.Error())
		}
		opts.ForceProxy = &suggestion
	}

	return opts, nil
}

// EffectiveMetricsPort resolves the MetricsPort field against the
// listener port: 0 derives port+1, -1 disables metrics, any other
// value is used verbatim.
func (o *Options) EffectiveMetricsPort() (port uint16, enabled bool) {
	switch {
	case o.MetricsPort == -1:
		return 0, false
	case o.MetricsPort == 0:
		return o.Port + 1, true
	default:
		return uint16(o.MetricsPort), true
	}
}
