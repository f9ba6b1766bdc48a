package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hightemp/flagpic/internal/flagmatch"
	"github.com/hightemp/flagpic/internal/flagstore"
	"github.com/hightemp/flagpic/internal/output"
)

func newMatchCmd(opts *options) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "match <query...>",
		Short: "Find the flag that best matches a name",
		Long: `Scores every flag in the configured store against the query and prints
the best match with its similarity score (0 to 1).

Examples:
  flagpic match United States
  flagpic match --top 3 "Cote d'Ivoire"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if top < 1 {
				top = 1
			}
			query := strings.Join(args, " ")

			store, err := flagstore.New(opts.cfg)
			if err != nil {
				return withExitCode(exitCodeFor(err), err)
			}
			defer closeStore(store)

			candidates, err := store.ListCandidates(cmd.Context())
			if err != nil {
				return err
			}
			set, err := flagmatch.NewCandidateSet(candidates)
			if err != nil {
				return withExitCode(exitCodeFor(err), err)
			}

			result := &output.MatchOutput{
				Query:   query,
				Matches: flagmatch.New(set).Rank(query, top),
			}

			if opts.jsonOutput {
				jsonStr, err := result.FormatJSON()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), jsonStr)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.FormatText())
			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", 1, "number of matches to print")
	return cmd
}
