package flagstore

import (
	"context"

	"github.com/hightemp/flagpic/internal/countries"
	"github.com/hightemp/flagpic/internal/flagfetch"
	"github.com/hightemp/flagpic/internal/flagmatch"
)

// Fetcher downloads flags by code. *flagfetch.Client implements it.
type Fetcher interface {
	FetchRemote(ctx context.Context, code string, ratio flagfetch.AspectRatio) ([]byte, error)
	FlagURL(code string, ratio flagfetch.AspectRatio) string
}

// Remote serves flags from the remote repository. Its candidates are the
// lower-case ISO 3166 codes.
type Remote struct {
	fetcher Fetcher
	ratio   flagfetch.AspectRatio
	cache   *flagfetch.Cache
}

// NewRemote creates a remote store. cache may be nil; when set it is saved on Close.
func NewRemote(fetcher Fetcher, ratio flagfetch.AspectRatio, cache *flagfetch.Cache) *Remote {
	return &Remote{fetcher: fetcher, ratio: ratio, cache: cache}
}

// Kind implements Store.
func (r *Remote) Kind() Kind { return KindRemote }

// ListCandidates implements Store.
func (r *Remote) ListCandidates(ctx context.Context) ([]flagmatch.Candidate, error) {
	codes := countries.AllCodesLower()
	out := make([]flagmatch.Candidate, len(codes))
	for i, code := range codes {
		out[i] = flagmatch.Candidate{ID: code, Source: r.fetcher.FlagURL(code, r.ratio)}
	}
	return out, nil
}

// Open implements Store.
func (r *Remote) Open(ctx context.Context, id string) ([]byte, error) {
	return r.fetcher.FetchRemote(ctx, id, r.ratio)
}

// Close implements Store.
func (r *Remote) Close() error {
	if r.cache != nil {
		return r.cache.Save()
	}
	return nil
}
