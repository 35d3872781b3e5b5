package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bracketeer/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the problem and artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached problem and rendered artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ch, err := cache.Open(ctx, c.cfg.CacheOptions())
			if err != nil {
				return err
			}
			defer ch.Close()

			clearer, ok := ch.(cache.Clearer)
			if !ok {
				return fmt.Errorf("the %s cache cannot be cleared", c.cfg.Cache.Backend)
			}
			if err := clearer.Clear(ctx); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cleared the %s cache", c.cfg.Cache.Backend)
			if c.cfg.Cache.Backend == cache.BackendFile {
				printDetail("Directory: %s", c.cfg.Cache.Dir)
			}
			return nil
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			switch c.cfg.Cache.Backend {
			case cache.BackendFile:
				fmt.Fprintln(w, c.cfg.Cache.Dir)
			case cache.BackendRedis:
				fmt.Fprintln(w, c.cfg.Cache.RedisURL)
			case cache.BackendMongo:
				fmt.Fprintf(w, "%s/%s\n", c.cfg.Cache.MongoURI, c.cfg.Cache.MongoDatabase)
			default:
				fmt.Fprintln(w, "caching disabled")
			}
			return nil
		},
	}
}
