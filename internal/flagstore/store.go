// Package flagstore enumerates and opens flag images from a local directory or
// from the remote flag repository.
package flagstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hightemp/flagpic/internal/config"
	"github.com/hightemp/flagpic/internal/countryinfo"
	"github.com/hightemp/flagpic/internal/flagfetch"
	"github.com/hightemp/flagpic/internal/flagmatch"
	"github.com/hightemp/flagpic/internal/logger"
)

// Kind selects a store backend.
type Kind string

const (
	// KindLocal reads <identifier>.png files from a directory (default).
	KindLocal Kind = "local"
	// KindRemote downloads SVG flags by country code.
	KindRemote Kind = "remote"
)

// ParseKind parses a store kind string.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "local", "":
		return KindLocal, nil
	case "remote":
		return KindRemote, nil
	default:
		return "", fmt.Errorf("invalid flag store: %s (use local or remote)", s)
	}
}

// Store is a source of flag images.
type Store interface {
	Kind() Kind
	// ListCandidates returns the flags the store can open, in a stable order.
	ListCandidates(ctx context.Context) ([]flagmatch.Candidate, error)
	// Open returns the encoded image for a candidate identifier.
	Open(ctx context.Context, id string) ([]byte, error)
	// Close releases the store and flushes any cache.
	Close() error
}

// New opens the store selected by cfg.
func New(cfg *config.Config) (Store, error) {
	kind, err := ParseKind(cfg.Store)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindLocal:
		return NewLocal(cfg.FlagsDir)
	case KindRemote:
		ratio, err := flagfetch.ParseAspectRatio(cfg.Remote.AspectRatio)
		if err != nil {
			return nil, err
		}
		opts := []flagfetch.Option{
			flagfetch.WithBaseURL(cfg.Remote.BaseURL),
			flagfetch.WithTimeout(time.Duration(cfg.Remote.TimeoutSeconds) * time.Second),
		}
		if !cfg.NoCache {
			cache := flagfetch.OpenCache(config.FlagCacheDir(cfg.CacheDir), cfg.CacheTTLDays)
			opts = append(opts, flagfetch.WithCache(cache))
			return NewRemote(flagfetch.NewClient(opts...), ratio, cache), nil
		}
		return NewRemote(flagfetch.NewClient(opts...), ratio, nil), nil
	default:
		return nil, fmt.Errorf("unknown flag store: %s", kind)
	}
}

// Resolve picks the flag for a country. A local store is fuzzy-matched on the
// country's display name; a remote store is addressed by the code itself.
func Resolve(ctx context.Context, s Store, info countryinfo.Info) (flagmatch.MatchResult, error) {
	candidates, err := s.ListCandidates(ctx)
	if err != nil {
		return flagmatch.MatchResult{}, err
	}
	set, err := flagmatch.NewCandidateSet(candidates)
	if err != nil {
		return flagmatch.MatchResult{}, err
	}

	if s.Kind() == KindRemote {
		if c, ok := set.Lookup(strings.ToLower(info.Code)); ok {
			return flagmatch.MatchResult{Candidate: c, Score: 1}, nil
		}
	}

	res, err := flagmatch.New(set).Match(info.Name)
	if err != nil {
		return flagmatch.MatchResult{}, err
	}
	logger.Debug("matched flag", "code", info.Code, "name", info.Name, "flag", res.Candidate.ID, "score", res.Score)
	return res, nil
}
