package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

// Progress prints a single updating "[done/total] item" line. It writes nothing
// unless the writer is a terminal.
type Progress struct {
	mu      sync.Mutex
	w       io.Writer
	total   int
	done    int
	enabled bool
}

// NewProgress creates a progress line for total items on w.
func NewProgress(w io.Writer, total int) *Progress {
	return &Progress{w: w, total: total, enabled: IsTerminal(w)}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Enable forces progress output on or off.
func (p *Progress) Enable(on bool) {
	p.mu.Lock()
	p.enabled = on
	p.mu.Unlock()
}

// Step marks one item as finished.
func (p *Progress) Step(item string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	if !p.enabled {
		return
	}
	fmt.Fprintf(p.w, "\r\033[K[%d/%d] %s", p.done, p.total, item)
}

// Done ends the progress line.
func (p *Progress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.enabled && p.done > 0 {
		fmt.Fprintln(p.w)
	}
}
