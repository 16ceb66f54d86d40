package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/abdul-hamid-achik/bookcheck/packages/books"
	"github.com/abdul-hamid-achik/bookcheck/packages/core/config"
	"github.com/abdul-hamid-achik/bookcheck/packages/core/env"
	"github.com/abdul-hamid-achik/bookcheck/packages/core/runner"
	"github.com/abdul-hamid-achik/bookcheck/packages/fake"
	bchttp "github.com/abdul-hamid-achik/bookcheck/packages/http"
	"github.com/spf13/pflag"
)

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return val == "yes"
		}
		return b
	}
	return defaultVal
}

// chainFlags are shared by run and list.
type chainFlags struct {
	configPath string
	envFile    string
	baseURL    string
	bookID     int
	deleteBody bool
	preflight  bool
}

func (f *chainFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.configPath, "config", getEnvString("BOOKCHECK_CONFIG", ""), "Path to config file (env: BOOKCHECK_CONFIG)")
	fs.StringVar(&f.envFile, "env-file", getEnvString("BOOKCHECK_ENV_FILE", ""), "Path to .env file exported before BOOKCHECK_* overrides apply (env: BOOKCHECK_ENV_FILE)")
	fs.StringVar(&f.baseURL, "base-url", "", "API base URL (default "+books.DefaultBaseURL+")")
	fs.IntVar(&f.bookID, "book-id", 0, "Book to order (default 1)")
	fs.BoolVar(&f.deleteBody, "delete-body", false, "Send {bookId, customerName} with the DELETE call")
	fs.BoolVar(&f.preflight, "preflight", false, "Check GET /status before the lifecycle")
}

// resolveConfig layers defaults, the config file, BOOKCHECK_* variables
// (after the .env file is exported) and explicitly set flags. extra adds
// command specific flag overrides.
func (f *chainFlags) resolveConfig(fs *pflag.FlagSet, extra func(overrides *config.Config)) (*config.Config, error) {
	cfg, err := config.LoadConfig(f.configPath)
	if err != nil {
		return nil, err
	}

	envFile := f.envFile
	if envFile == "" {
		envFile = cfg.EnvFile
	}
	if envFile == "" {
		if _, err := os.Stat(".env"); err == nil {
			envFile = ".env"
		}
	}
	if envFile != "" {
		if _, err := env.LoadAndExportDotEnv(envFile); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(config.EnvPrefix); err != nil {
		return nil, err
	}
	cfg.EnvFile = envFile

	overrides := &config.Config{}
	if fs.Changed("base-url") {
		overrides.BaseURL = f.baseURL
	}
	if fs.Changed("book-id") {
		overrides.BookID = f.bookID
	}
	if fs.Changed("delete-body") {
		overrides.DeleteWithBody = config.BoolPtr(f.deleteBody)
	}
	if fs.Changed("preflight") {
		overrides.Preflight = config.BoolPtr(f.preflight)
	}
	if extra != nil {
		extra(overrides)
	}
	cfg = cfg.Merge(overrides)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newClient(cfg *config.Config) *bchttp.Client {
	opts := []bchttp.ClientOption{
		bchttp.WithTimeout(time.Duration(cfg.Timeout) * time.Millisecond),
		bchttp.WithFollowRedirects(cfg.GetFollowRedirects()),
		bchttp.WithValidateSSL(cfg.GetValidateSSL()),
		bchttp.WithUserAgent(bchttp.DefaultUserAgent + "/" + version),
	}
	if cfg.Proxy != "" {
		opts = append(opts, bchttp.WithProxy(cfg.Proxy))
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, bchttp.WithDefaultHeaders(cfg.Headers))
	}
	return bchttp.NewClient(opts...)
}

// chainBuilder returns a function producing a fresh lifecycle chain, with
// new identities, on every call.
func chainBuilder(cfg *config.Config, client *bchttp.Client, gen *fake.Generator) func() []*runner.Step {
	opts := books.Options{
		BaseURL:        cfg.BaseURL,
		Client:         client,
		Generator:      gen,
		BookID:         cfg.BookID,
		DeleteWithBody: cfg.GetDeleteWithBody(),
	}
	return func() []*runner.Step {
		steps := books.OrderLifecycle(opts)
		if cfg.GetPreflight() {
			steps = append([]*runner.Step{books.StatusCheck(opts)}, steps...)
		}
		return steps
	}
}

func newRunner(name string, logger *slog.Logger) *runner.Runner {
	return runner.New(&runner.Config{Name: name, Logger: logger})
}
