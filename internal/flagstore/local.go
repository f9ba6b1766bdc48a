package flagstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hightemp/flagpic/internal/apperrors"
	"github.com/hightemp/flagpic/internal/flagmatch"
)

const localExt = ".png"

// Local is a directory of <identifier>.png flags. The directory is listed once
// when the store is opened.
type Local struct {
	candidates []flagmatch.Candidate
	byID       map[string]string
}

// NewLocal lists dir. It fails with *apperrors.InvalidPathError when dir is not a
// directory and with flagmatch.ErrEmptyCandidateSet when it holds no PNG files.
func NewLocal(dir string) (*Local, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &apperrors.InvalidPathError{Path: dir, Err: err}
	}

	l := &Local{byID: make(map[string]string)}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), localExt) {
			continue
		}
		id := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if id == "" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		l.byID[id] = path
		l.candidates = append(l.candidates, flagmatch.Candidate{ID: id, Source: path})
	}
	if len(l.candidates) == 0 {
		return nil, &flagmatch.EmptyCandidateSetError{Source: dir}
	}
	sort.Slice(l.candidates, func(i, j int) bool { return l.candidates[i].ID < l.candidates[j].ID })
	return l, nil
}

// Kind implements Store.
func (l *Local) Kind() Kind { return KindLocal }

// ListCandidates implements Store.
func (l *Local) ListCandidates(ctx context.Context) ([]flagmatch.Candidate, error) {
	out := make([]flagmatch.Candidate, len(l.candidates))
	copy(out, l.candidates)
	return out, nil
}

// Open implements Store.
func (l *Local) Open(ctx context.Context, id string) ([]byte, error) {
	path, ok := l.byID[id]
	if !ok {
		return nil, &apperrors.NotFoundError{What: id}
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &apperrors.NotFoundError{What: id, Err: err}
	}
	if err != nil {
		return nil, fmt.Errorf("read flag %s: %w", id, err)
	}
	return data, nil
}

// Close implements Store.
func (l *Local) Close() error { return nil }
