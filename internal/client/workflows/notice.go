package workflows

import (
	"sync"
	"time"
)

// NoticeTTL is how long a success notice stays up.
const NoticeTTL = 5 * time.Second

// Notice is a self-dismissing message.
type Notice struct {
	mu    sync.Mutex
	text  string
	timer *time.Timer
	ttl   time.Duration
}

func NewNotice() *Notice {
	return &Notice{ttl: NoticeTTL}
}

// Show replaces the current text and restarts the dismissal timer.
func (n *Notice) Show(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
	}
	n.text = text
	var t *time.Timer
	t = time.AfterFunc(n.ttl, func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		// A later Show owns the text now.
		if n.timer == t {
			n.text = ""
			n.timer = nil
		}
	})
	n.timer = t
}

func (n *Notice) Text() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.text
}

func (n *Notice) Dismiss() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.text = ""
}
