package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/tellbrandz/tbz/internal/client/view"
)

// terminalViewport is the terminal's notion of "scroll to top": it prints a
// page banner. The banner is printed once per path so the delayed reassert
// after a navigation does not repeat it.
type terminalViewport struct {
	mu    sync.Mutex
	w     io.Writer
	route func() view.Route
	shown string
}

func newTerminalViewport(w io.Writer) *terminalViewport {
	return &terminalViewport{w: w}
}

func (v *terminalViewport) ScrollToTop() {
	if v.route == nil {
		return
	}
	r := v.route()

	v.mu.Lock()
	defer v.mu.Unlock()
	// The controller's delayed reassert lands here too. A terminal has no
	// layout that can shift, so repeating the banner would only be noise.
	if r.Path == v.shown {
		return
	}
	v.shown = r.Path

	title := strings.ToUpper(strings.ReplaceAll(string(r.Page), "-", " "))
	fmt.Fprintf(v.w, "\n==== %s (%s) ====\n", title, r.Path)
}
