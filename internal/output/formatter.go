// Package output handles output formatting.
package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hightemp/flagpic/internal/countryinfo"
	"github.com/hightemp/flagpic/internal/flagmatch"
)

// InfoResult is the result of a single code lookup.
type InfoResult struct {
	countryinfo.Info
	Flag  string  `json:"flag,omitempty"`
	Score float64 `json:"score,omitempty"`
}

// FormatText returns the one-line country summary.
func (r *InfoResult) FormatText() string {
	return r.Info.String()
}

// FormatJSON formats result as JSON.
func (r *InfoResult) FormatJSON() (string, error) {
	return marshal(r)
}

// MatchOutput is the result of matching a free-text query.
type MatchOutput struct {
	Query   string                  `json:"query"`
	Matches []flagmatch.MatchResult `json:"matches"`
}

// FormatText formats one tab-separated line per match: flag, score, source.
func (m *MatchOutput) FormatText() string {
	lines := make([]string, 0, len(m.Matches))
	for _, r := range m.Matches {
		source := r.Candidate.Source
		if source == "" {
			source = "-"
		}
		lines = append(lines, fmt.Sprintf("%s\t%.4f\t%s", r.Candidate.ID, r.Score, source))
	}
	return strings.Join(lines, "\n")
}

// FormatJSON formats the matches as JSON.
func (m *MatchOutput) FormatJSON() (string, error) {
	return marshal(m)
}

// GenerateResult is the outcome of generating one profile picture.
type GenerateResult struct {
	Code   string  `json:"code"`
	Name   string  `json:"name,omitempty"`
	Flag   string  `json:"flag,omitempty"`
	Score  float64 `json:"score,omitempty"`
	Output string  `json:"output,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// FormatText formats result as tab-separated text.
func (r *GenerateResult) FormatText() string {
	if r.Error != "" {
		return FormatError(r.Code, r.Error)
	}
	return fmt.Sprintf("%s\t%s\t%s (%.2f)\t%s", r.Code, r.Name, r.Flag, r.Score, r.Output)
}

// FormatJSON formats result as JSON.
func (r *GenerateResult) FormatJSON() (string, error) {
	return marshal(r)
}

// BatchResult contains results for batch generation.
type BatchResult struct {
	Results []*GenerateResult
}

// Failed returns the number of results with an error.
func (b *BatchResult) Failed() int {
	n := 0
	for _, r := range b.Results {
		if r.Error != "" {
			n++
		}
	}
	return n
}

// Summary returns "generated N of M profile pictures".
func (b *BatchResult) Summary() string {
	return fmt.Sprintf("generated %d of %d profile pictures", len(b.Results)-b.Failed(), len(b.Results))
}

// FormatText formats batch results as text (one line per result).
func (b *BatchResult) FormatText() string {
	var lines []string
	for _, r := range b.Results {
		lines = append(lines, r.FormatText())
	}
	return strings.Join(lines, "\n")
}

// FormatJSON formats batch results as JSON array.
func (b *BatchResult) FormatJSON() (string, error) {
	if b.Results == nil {
		return "[]", nil
	}
	return marshal(b.Results)
}

// FormatError formats an error line for batch output.
func FormatError(code, msg string) string {
	return fmt.Sprintf("%s\t-\t-\t-\tERROR: %s", code, msg)
}

func marshal(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
