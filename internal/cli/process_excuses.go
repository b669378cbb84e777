package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kianmeng/drt-tools/internal/app"
)

type processExcusesOptions struct {
	CacheDir         string
	ExcusesURL       string
	MirrorURL        string
	Suite            string
	TargetSuite      string
	Message          string
	Output           string
	RCBugs           string
	SkipDownload     bool
	Force            bool
	Workers          int
	HTTPTimeoutSec   int
	HTTPRetries      int
	HTTPRetryDelayMs int
}

func newProcessExcusesCommand() *cobra.Command {
	opts := processExcusesOptions{}
	cmd := &cobra.Command{
		Use:   "process-excuses",
		Short: "Propose binNMUs for uploads blocked on non-buildd builds",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProcessExcuses(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.CacheDir, "cache-dir", defaultCacheDir(), "Cache directory for downloaded files")
	cmd.Flags().StringVar(&opts.ExcusesURL, "excuses-url", "https://release.debian.org/britney/excuses.yaml", "URL of the excuses feed")
	cmd.Flags().StringVar(&opts.MirrorURL, "mirror", "https://deb.debian.org/debian", "Debian mirror base URL")
	cmd.Flags().StringVar(&opts.Suite, "suite", "unstable", "Suite to fetch binary package indices for")
	cmd.Flags().StringVar(&opts.TargetSuite, "target-suite", "unstable", "Suite the nmu commands target")
	cmd.Flags().StringVar(&opts.Message, "message", "Rebuild on buildd", "Justification message for the nmu commands")
	cmd.Flags().StringVar(&opts.Output, "output", "-", "Output path for nmu commands (- for stdout)")
	cmd.Flags().StringVar(&opts.RCBugs, "rc-bugs", "", "Optional UDD bug dump; sources with RC bugs are skipped")
	cmd.Flags().BoolVar(&opts.SkipDownload, "skip-download", false, "Process previously cached files without downloading")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Process even if the excuses feed is unchanged")
	cmd.Flags().IntVar(&opts.Workers, "workers", 4, "Concurrent download/parse workers (0 = default)")
	cmd.Flags().IntVar(&opts.HTTPTimeoutSec, "http-timeout", 60, "HTTP timeout in seconds (0 = default)")
	cmd.Flags().IntVar(&opts.HTTPRetries, "http-retries", 3, "HTTP retries (0 = default)")
	cmd.Flags().IntVar(&opts.HTTPRetryDelayMs, "http-retry-delay-ms", 200, "HTTP retry base delay in ms (0 = default)")

	_ = viper.BindPFlag("cache_dir", cmd.Flags().Lookup("cache-dir"))
	_ = viper.BindPFlag("excuses_url", cmd.Flags().Lookup("excuses-url"))
	_ = viper.BindPFlag("mirror", cmd.Flags().Lookup("mirror"))
	_ = viper.BindPFlag("suite", cmd.Flags().Lookup("suite"))
	_ = viper.BindPFlag("target_suite", cmd.Flags().Lookup("target-suite"))
	_ = viper.BindPFlag("message", cmd.Flags().Lookup("message"))
	_ = viper.BindPFlag("output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("rc_bugs", cmd.Flags().Lookup("rc-bugs"))
	_ = viper.BindPFlag("skip_download", cmd.Flags().Lookup("skip-download"))
	_ = viper.BindPFlag("force", cmd.Flags().Lookup("force"))
	_ = viper.BindPFlag("workers", cmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("http_timeout_sec", cmd.Flags().Lookup("http-timeout"))
	_ = viper.BindPFlag("http_retries", cmd.Flags().Lookup("http-retries"))
	_ = viper.BindPFlag("http_retry_delay_ms", cmd.Flags().Lookup("http-retry-delay-ms"))

	return cmd
}

func runProcessExcuses(ctx context.Context, cmd *cobra.Command, opts processExcusesOptions) error {
	service := newAppService()
	result, err := service.ProcessExcuses(ctx, app.ProcessExcusesRequest{
		CacheDir:         resolveString(cmd, opts.CacheDir, "cache_dir", "cache-dir"),
		ExcusesURL:       resolveString(cmd, opts.ExcusesURL, "excuses_url", "excuses-url"),
		MirrorURL:        resolveString(cmd, opts.MirrorURL, "mirror", "mirror"),
		Suite:            resolveString(cmd, opts.Suite, "suite", "suite"),
		TargetSuite:      resolveString(cmd, opts.TargetSuite, "target_suite", "target-suite"),
		Message:          resolveString(cmd, opts.Message, "message", "message"),
		Output:           resolveString(cmd, opts.Output, "output", "output"),
		BugsPath:         resolveString(cmd, opts.RCBugs, "rc_bugs", "rc-bugs"),
		SkipDownload:     resolveBool(cmd, opts.SkipDownload, "skip_download", "skip-download"),
		Force:            resolveBool(cmd, opts.Force, "force", "force"),
		Workers:          resolveInt(cmd, opts.Workers, "workers", "workers"),
		HTTPTimeoutSec:   resolveInt(cmd, opts.HTTPTimeoutSec, "http_timeout_sec", "http-timeout"),
		HTTPRetries:      resolveInt(cmd, opts.HTTPRetries, "http_retries", "http-retries"),
		HTTPRetryDelayMs: resolveInt(cmd, opts.HTTPRetryDelayMs, "http_retry_delay_ms", "http-retry-delay-ms"),
	})
	if err != nil {
		return err
	}
	if result.Unchanged {
		return nil
	}
	fmt.Fprintf(os.Stderr, "proposed %d binNMU(s)\n", result.Directives)
	return nil
}

func defaultCacheDir() string {
	if base, err := os.UserCacheDir(); err == nil {
		return filepath.Join(base, "drt-tools")
	}
	return ".drt-tools-cache"
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetString(key)
}

func resolveBool(cmd *cobra.Command, value bool, key string, flagName string) bool {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetBool(key)
}

func resolveInt(cmd *cobra.Command, value int, key string, flagName string) int {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetInt(key)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}
