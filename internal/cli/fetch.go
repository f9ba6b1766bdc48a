package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hightemp/flagpic/internal/config"
	"github.com/hightemp/flagpic/internal/flagfetch"
	"github.com/hightemp/flagpic/internal/logger"
)

func newFetchCmd(opts *options) *cobra.Command {
	var (
		ratio string
		dir   string
		name  string
	)

	cmd := &cobra.Command{
		Use:   "fetch <code>",
		Short: "Download a country flag SVG",
		Long: `Downloads the flag for a country code from the flag-icon-css repository
into a directory.

The name template replaces {code} with the lower-case code; the extension
is added automatically. Defaults: {code} for 1x1, {code}_4x3 for 4x3.

Examples:
  flagpic fetch de                     # ./de.svg
  flagpic fetch de --ratio 4x3         # ./de_4x3.svg
  flagpic fetch de --dir flags --name flag-{code}`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if !cmd.Flags().Changed("ratio") {
				ratio = cfg.Remote.AspectRatio
			}
			r, err := flagfetch.ParseAspectRatio(ratio)
			if err != nil {
				return withExitCode(ExitInvalidInput, err)
			}

			clientOpts := []flagfetch.Option{
				flagfetch.WithBaseURL(cfg.Remote.BaseURL),
				flagfetch.WithTimeout(time.Duration(cfg.Remote.TimeoutSeconds) * time.Second),
			}
			var cache *flagfetch.Cache
			if !cfg.NoCache {
				cache = flagfetch.OpenCache(config.FlagCacheDir(cfg.CacheDir), cfg.CacheTTLDays)
				clientOpts = append(clientOpts, flagfetch.WithCache(cache))
			}
			client := flagfetch.NewClient(clientOpts...)

			path, err := client.Save(cmd.Context(), args[0], r, dir, name)
			if cache != nil {
				if serr := cache.Save(); serr != nil {
					logger.WithError(serr).Warn("could not save flag cache")
				}
			}
			if err != nil {
				return withExitCode(exitCodeFor(err), err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&ratio, "ratio", config.DefaultAspectRatio, "aspect ratio: 1x1 or 4x3")
	cmd.Flags().StringVar(&dir, "dir", ".", "directory to save into (must exist)")
	cmd.Flags().StringVar(&name, "name", "", "file name template")
	return cmd
}
