package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hightemp/flagpic/internal/apperrors"
	"github.com/hightemp/flagpic/internal/countryinfo"
	"github.com/hightemp/flagpic/internal/flagmatch"
	"github.com/hightemp/flagpic/internal/flagstore"
	"github.com/hightemp/flagpic/internal/logger"
	"github.com/hightemp/flagpic/internal/output"
)

const msgNoCode = "Country code is not passed as a command line argument"

func runInfo(cmd *cobra.Command, opts *options, args []string, showFlag bool) error {
	out := cmd.OutOrStdout()
	if len(args) == 0 {
		fmt.Fprintln(out, msgNoCode)
		return nil
	}

	info, err := countryinfo.NewCLDR().Lookup(args[0])
	if err != nil {
		if apperrors.IsInvalidCode(err) {
			fmt.Fprintln(out, err.Error())
			return nil
		}
		return err
	}
	result := &output.InfoResult{Info: info}

	if showFlag {
		store, err := flagstore.New(opts.cfg)
		if err != nil {
			return withExitCode(exitCodeFor(err), err)
		}
		defer closeStore(store)

		match, err := flagstore.Resolve(cmd.Context(), store, info)
		if err != nil {
			return withExitCode(exitCodeFor(err), err)
		}
		result.Flag = match.Candidate.ID
		result.Score = match.Score
	}

	if opts.jsonOutput {
		jsonStr, err := result.FormatJSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, jsonStr)
		return nil
	}

	fmt.Fprintln(out, result.FormatText())
	if showFlag {
		fmt.Fprintf(out, "Flag(%s, %.2f)\n", result.Flag, result.Score)
	}
	return nil
}

// closeStore closes s and logs a failure to flush its cache.
func closeStore(s flagstore.Store) {
	if err := s.Close(); err != nil {
		logger.WithError(err).Warn("could not close flag store", "store", string(s.Kind()))
	}
}

// exitCodeFor maps an error kind to an exit code.
func exitCodeFor(err error) int {
	switch {
	case apperrors.IsInvalidCode(err):
		return ExitInvalidInput
	case apperrors.IsNotFound(err):
		return ExitNotFound
	case apperrors.IsInvalidPath(err), errors.Is(err, flagmatch.ErrEmptyCandidateSet):
		return ExitConfig
	default:
		return ExitError
	}
}
