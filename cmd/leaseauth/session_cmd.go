package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MrEthical07/leaseauth/session"
)

func newSessionCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Show the latest session stored in redis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr := strings.TrimSpace(v.GetString("redis-addr"))
			if addr == "" {
				return errors.New("session requires --redis-addr")
			}
			cfg, err := engineConfig(v)
			if err != nil {
				return err
			}
			rdb := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
			defer rdb.Close()

			store := session.NewRedisStore(rdb, cfg.Session.RedisPrefix, cfg.Session.DefaultTTL)
			creds, err := store.Latest(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "player: %s\n", creds.PlayerIdentifier)
			if creds.PlayerName != "" {
				fmt.Fprintf(out, "name: %s\n", creds.PlayerName)
			}
			if !creds.ReceivedAt.IsZero() {
				fmt.Fprintf(out, "signed in: %s\n", humanize.Time(creds.ReceivedAt))
			}
			if exp, ok := session.TokenExpiry(creds.SessionToken); ok {
				fmt.Fprintf(out, "expires: %s (%s)\n", exp.Format(time.RFC3339), humanize.Time(exp))
			}
			return nil
		},
	}
	return cmd
}
