package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Sternrassler/cloudplaya/pkg/client"
	"github.com/Sternrassler/cloudplaya/pkg/logging"
	"github.com/Sternrassler/cloudplaya/pkg/metrics"
	"github.com/Sternrassler/cloudplaya/pkg/session"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// passwordEnv is read by login when --password is not given.
const passwordEnv = "CLOUDPLAYA_PASSWORD"

type options struct {
	debug       bool
	configPath  string
	redisAddr   string
	account     string
	sessionTTL  time.Duration
	metricsAddr string

	stopMetrics context.CancelFunc
}

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "cloudplaya",
		Short:         "Browse an Amazon Cloud Player music library",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logCfg, err := logging.LoadConfig(client.EnvPrefix)
			if err != nil {
				return err
			}
			logCfg.Pretty = true
			logCfg.Output = cmd.ErrOrStderr()
			if opts.debug {
				logCfg.Level = logging.LevelDebug
			}
			logging.Setup(logCfg)
			log.Debug().Msg("debug logging enabled")

			if opts.metricsAddr != "" {
				ctx, cancel := context.WithCancel(context.Background())
				opts.stopMetrics = cancel
				go func() {
					if err := metrics.Serve(ctx, opts.metricsAddr, logging.NewLogger("metrics")); err != nil {
						log.Error().Err(err).Msg("metrics server stopped")
					}
				}()
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.stopMetrics != nil {
				opts.stopMetrics()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&opts.debug, "debug", "d", false, "Enable verbose debug output")
	flags.StringVar(&opts.configPath, "config", "", "Session file (default $HOME/"+session.ConfigFileName+")")
	flags.StringVar(&opts.redisAddr, "redis-addr", "", "Keep the session in Redis at this address instead of a file")
	flags.StringVar(&opts.account, "account", "", "Account name used to key the Redis session")
	flags.DurationVar(&opts.sessionTTL, "session-ttl", 0, "Expiry of the Redis session (0 keeps it forever)")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while the command runs")

	rootCmd.AddCommand(newLoginCmd(opts))
	rootCmd.AddCommand(newLogoutCmd(opts))
	rootCmd.AddCommand(newSongsCmd(opts))
	rootCmd.AddCommand(newAlbumsCmd(opts))
	rootCmd.AddCommand(newArtistsCmd(opts))
	rootCmd.AddCommand(newAlbumCmd(opts))
	rootCmd.AddCommand(newTracksCmd(opts))
	rootCmd.AddCommand(newStreamURLsCmd(opts))

	return rootCmd
}

// openClient builds a client on the configured session store and loads any
// saved session. The returned func releases the client and the store.
func openClient(ctx context.Context, opts *options) (*client.Client, func(), error) {
	cfg, err := client.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	closers := []func(){}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch {
	case opts.redisAddr != "":
		redisClient := redis.NewClient(&redis.Options{
			Addr: opts.redisAddr,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisClient.Close()
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", opts.redisAddr, err)
		}
		closers = append(closers, func() { redisClient.Close() })
		cfg.Store = session.NewRedisStore(redisClient, session.StoreKey{Account: opts.account}, opts.sessionTTL)
		log.Debug().Str("addr", opts.redisAddr).Str("account", opts.account).Msg("Using Redis session store")
	case opts.configPath != "":
		cfg.Store = session.NewFileStore(opts.configPath)
	}

	c, err := client.Open(ctx, cfg)
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	closers = append(closers, func() { c.Close() })

	return c, closeAll, nil
}

// openAuthedClient is openClient for commands that need a session.
func openAuthedClient(ctx context.Context, opts *options) (*client.Client, func(), error) {
	c, closeFn, err := openClient(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	if !c.Authenticated() {
		closeFn()
		return nil, nil, errors.New("not logged in; run 'cloudplaya login' first")
	}
	return c, closeFn, nil
}
