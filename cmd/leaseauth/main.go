package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"pkt.systems/pslog"

	leaseauth "github.com/MrEthical07/leaseauth"
)

func main() {
	os.Exit(submain(context.Background(), os.Args[1:]))
}

func submain(ctx context.Context, args []string) int {
	cmd := newRootCommand()
	cmd.SetArgs(args)
	ctx = withSignalCancel(ctx)
	if err := cmd.ExecuteContext(ctx); err != nil {
		if err != context.Canceled {
			fmt.Fprintf(os.Stderr, "%s\n", err)
		}
		return 1
	}
	return 0
}

func newRootCommand() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:           "leaseauth",
		Short:         "Sign a player in by approving a remote lease on another device",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return readConfigFile(v)
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "optional config file (yaml, json or toml)")
	flags.String("base-url", "", "platform API base URL")
	flags.String("game-key", "", "game API key")
	flags.String("game-version", "", "game version sent with each lease call")
	flags.Duration("request-timeout", 0, "per-request timeout for platform calls")
	flags.String("redis-addr", "", "store sessions in redis at this address instead of memory")
	flags.String("redis-prefix", "", "redis key prefix for stored sessions")
	flags.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	bindFlags(v, flags)

	v.SetEnvPrefix("LEASEAUTH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd.AddCommand(newLoginCommand(v))
	cmd.AddCommand(newSessionCommand(v))
	return cmd
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(flag *pflag.Flag) {
		if err := v.BindPFlag(flag.Name, flag); err != nil {
			panic(err)
		}
	})
}

func readConfigFile(v *viper.Viper) error {
	path := strings.TrimSpace(v.GetString("config"))
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// engineConfig layers flags, LEASEAUTH_* variables and the config file over
// the library's environment configuration.
func engineConfig(v *viper.Viper) (leaseauth.Config, error) {
	cfg, err := leaseauth.LoadConfigFromEnv()
	if err != nil {
		return leaseauth.Config{}, err
	}
	if v.IsSet("base-url") {
		cfg.API.BaseURL = v.GetString("base-url")
	}
	if v.IsSet("game-key") {
		cfg.API.GameKey = v.GetString("game-key")
	}
	if v.IsSet("game-version") {
		cfg.API.GameVersion = v.GetString("game-version")
	}
	if d := v.GetDuration("request-timeout"); d > 0 {
		cfg.API.RequestTimeout = d
	}
	if v.IsSet("redis-prefix") {
		cfg.Session.RedisPrefix = v.GetString("redis-prefix")
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, v *viper.Viper) pslog.Logger {
	logger := pslog.NewStructured(cmd.ErrOrStderr())
	if level, ok := pslog.ParseLevel(strings.TrimSpace(v.GetString("log-level"))); ok {
		logger = logger.LogLevel(level)
	}
	return logger.With("app", "leaseauth")
}

func withSignalCancel(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(signals)
	}()
	return ctx
}
