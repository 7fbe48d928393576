// Command maglinkctl issues and verifies magic-link tokens from the shell,
// grounded on the teacher's cmd/hellojohn (Cobra root + subcommands talking
// to the same stack the service uses) and cmd/keys (godotenv + config.Load
// at the process edge, flag parsing for one-shot key operations).
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	rdb "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dropDatabas3/magiclink"
	"github.com/dropDatabas3/magiclink/audit"
	"github.com/dropDatabas3/magiclink/config"
	"github.com/dropDatabas3/magiclink/logger"
	"github.com/dropDatabas3/magiclink/metrics"
	"github.com/dropDatabas3/magiclink/ratelimit"
)

func main() {
	var (
		envFile    string
		configPath string
		keysPath   string
	)

	root := &cobra.Command{
		Use:   "maglinkctl",
		Short: "Issue and verify magic-link tokens",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envFile != "" {
				_ = godotenv.Load(envFile)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "optional .env file to load before reading config")
	root.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "path to config.yaml")
	root.PersistentFlags().StringVar(&keysPath, "keys", "configs/keys.yaml", "path to the key file")

	root.AddCommand(
		newKeygenCmd(&keysPath),
		newIssueCmd(&configPath, &keysPath),
		newVerifyCmd(&configPath, &keysPath),
		newServeMetricsCmd(&configPath),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func newKeygenCmd(keysPath *string) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new signing key and append it to the key file",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now().Unix()
			var expiresAt *int64
			if ttl > 0 {
				e := now + int64(ttl.Seconds())
				expiresAt = &e
			}
			k, err := magiclink.GenerateKey(now, expiresAt)
			if err != nil {
				return err
			}
			if err := appendKey(*keysPath, k); err != nil {
				return err
			}
			fmt.Printf("generated key kid=%s\n", k.KID())
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "signing validity window (0 = never expires)")
	return cmd
}

func newIssueCmd(configPath, keysPath *string) *cobra.Command {
	var (
		subject  string
		aud      string
		ttl      time.Duration
		oneTime  bool
		encrypt  bool
		pathBind string
		returnTo string
		baseURL  string
	)

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a magic-link token for a subject",
		RunE: func(cmd *cobra.Command, args []string) error {
			if subject == "" {
				return fmt.Errorf("--sub is required")
			}
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			keys, err := loadKeySet(*keysPath)
			if err != nil {
				return err
			}
			logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

			builder := magiclink.NewLinkBuilder(keys, magiclink.SystemClock{},
				magiclink.WithParamName(cfg.Token.ParamName),
				magiclink.WithIssueLimiter(buildLimiter(cfg)),
				magiclink.WithAuditSink(buildAuditSink(cfg)),
				magiclink.WithLogger(logger.Named("issue")),
			)

			opts := magiclink.CreateOptions{
				Aud:            aud,
				TTLSeconds:     int64(ttl.Seconds()),
				OneTime:        &oneTime,
				EncryptPayload: encrypt,
				PathBind:       pathBind,
				ReturnTo:       returnTo,
			}

			if baseURL != "" {
				u, err := builder.CreateURL(subject, baseURL, opts)
				if err != nil {
					return err
				}
				fmt.Println(u)
				return nil
			}
			tok, err := builder.Create(subject, opts)
			if err != nil {
				return err
			}
			fmt.Println(tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "sub", "", "token subject (required)")
	cmd.Flags().StringVar(&aud, "aud", "", "audience")
	cmd.Flags().DurationVar(&ttl, "ttl", 15*time.Minute, "token lifetime")
	cmd.Flags().BoolVar(&oneTime, "one-time", true, "generate a jti and make the token single-use")
	cmd.Flags().BoolVar(&encrypt, "encrypt", false, "wrap the payload in AES-256-GCM")
	cmd.Flags().StringVar(&pathBind, "path-bind", "", "bind the token to this request path")
	cmd.Flags().StringVar(&returnTo, "return-to", "", "return_to claim value")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "if set, print a full URL instead of a bare token")
	return cmd
}

func newVerifyCmd(configPath, keysPath *string) *cobra.Command {
	var (
		token           string
		expectedAud     string
		expectedPath    string
		reqPath         string
		expectedHost    string
		reqHost         string
		requireOneTime  bool
		maxSkew         int64
		userAgent       string
		returnAllowlist string
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a magic-link token and print its claims",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" && len(args) > 0 {
				token = args[0]
			}
			if token == "" {
				return fmt.Errorf("a token is required, as --token or as the first argument")
			}
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			keys, err := loadKeySet(*keysPath)
			if err != nil {
				return err
			}
			logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

			verifier := magiclink.NewVerifier(keys, magiclink.SystemClock{}, magiclink.NewMemoryNonceStore(time.Minute),
				magiclink.WithVerifierAuditSink(buildAuditSink(cfg)),
				magiclink.WithVerifierLogger(logger.Named("verify")),
			)

			var allow func(string) bool
			if returnAllowlist != "" {
				allowed := strings.Split(returnAllowlist, ",")
				allow = func(v string) bool {
					for _, a := range allowed {
						if a == v {
							return true
						}
					}
					return false
				}
			}

			var skew *int64
			if cmd.Flags().Changed("max-skew") {
				skew = &maxSkew
			}

			result := verifier.Verify(token, magiclink.VerifyOptions{
				ExpectedAud:       expectedAud,
				ExpectedPath:      expectedPath,
				Path:              reqPath,
				ExpectedHost:      expectedHost,
				Host:              reqHost,
				RequireOneTime:    requireOneTime,
				MaxClockSkew:      skew,
				EnforceUAHash:     userAgent != "",
				UserAgent:         userAgent,
				ReturnToAllowlist: allow,
			})

			if !result.OK {
				fmt.Printf("denied: %s\n", result.Reason)
				os.Exit(1)
			}
			fmt.Printf("ok: sub=%s aud=%s exp=%d jti=%s\n",
				result.Claims.Sub, result.Claims.Aud, result.Claims.Exp, result.Claims.JTI)
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "the compact token string")
	cmd.Flags().StringVar(&expectedAud, "aud", "", "expected audience")
	cmd.Flags().StringVar(&expectedPath, "expected-path", "", "expected bound path")
	cmd.Flags().StringVar(&reqPath, "path", "", "actual request path")
	cmd.Flags().StringVar(&expectedHost, "expected-host", "", "expected bound host")
	cmd.Flags().StringVar(&reqHost, "host", "", "actual request host")
	cmd.Flags().BoolVar(&requireOneTime, "require-one-time", false, "deny tokens without a jti")
	cmd.Flags().Int64Var(&maxSkew, "max-skew", 0, "clock skew tolerance in seconds (0 means exactly zero tolerance if set)")
	cmd.Flags().StringVar(&userAgent, "user-agent", "", "presented user-agent, enforced against the uah claim")
	cmd.Flags().StringVar(&returnAllowlist, "return-to-allowlist", "", "comma-separated allowed return_to values")
	return cmd
}

func newServeMetricsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve-metrics",
		Short: "Expose the Prometheus /metrics endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
			if _, err := metrics.New(nil); err != nil {
				return err
			}

			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			logger.L().Info("serving metrics", zap.String("addr", cfg.Metrics.Addr))
			return http.ListenAndServe(cfg.Metrics.Addr, mux)
		},
	}
	return cmd
}

func buildLimiter(cfg *config.Config) magiclink.IssueLimiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	if cfg.Redis.Addr != "" {
		client := rdb.NewClient(&rdb.Options{Addr: cfg.Redis.Addr})
		return ratelimit.NewRedis(client, cfg.Redis.Prefix, cfg.RateLimit.Max, cfg.RateLimit.Window)
	}
	return ratelimit.NewMemory(cfg.RateLimit.Max, cfg.RateLimit.Window)
}

func buildAuditSink(cfg *config.Config) magiclink.AuditSink {
	if cfg.Audit.Driver != "postgres" || cfg.Audit.DSN == "" {
		return audit.NewLoggingSink(logger.Named("audit"))
	}
	pool, err := pgxpool.New(context.Background(), cfg.Audit.DSN)
	if err != nil {
		logger.L().Warn("audit: falling back to logging sink", zap.Error(err))
		return audit.NewLoggingSink(logger.Named("audit"))
	}
	return audit.NewPostgresSink(pool, cfg.Audit.Table, logger.Named("audit"))
}
