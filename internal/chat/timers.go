package chat

import (
	"sync"
	"time"
)

// Tooltip texts rotated under the closed toggle button.
var tooltipTexts = []string{
	"Hello! I'm your AI assistant. Need help?",
	"Have a question? Click here to chat!",
	"I can help schedule your appointments.",
	"Looking for information? Just ask me!",
	"Let me assist you today. Click to open.",
}

const (
	tooltipInterval = 5 * time.Second

	// Instant replies loop continuously while the panel is closed: the
	// whole stack shows for replyShowFor, hides for replyPause, repeats.
	replyShowFor = 10 * time.Second
	replyPause   = 5 * time.Second
)

// TooltipRotator cycles the toggle-button tooltip through the fixed text
// list. One cancellation handle; Stop on panel open or teardown.
type TooltipRotator struct {
	onChange func(string)

	mu   sync.Mutex
	idx  int
	stop chan struct{}
}

// NewTooltipRotator creates a rotator that calls onChange with each text
// as it becomes current. onChange runs on the rotator's goroutine.
func NewTooltipRotator(onChange func(string)) *TooltipRotator {
	return &TooltipRotator{onChange: onChange}
}

// Current returns the text the rotator is showing.
func (r *TooltipRotator) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return tooltipTexts[r.idx]
}

// Start begins rotation. Calling Start on a running rotator is a no-op.
func (r *TooltipRotator) Start() {
	r.mu.Lock()
	if r.stop != nil {
		r.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	r.stop = stop
	r.mu.Unlock()

	r.onChange(r.Current())
	go func() {
		ticker := time.NewTicker(tooltipInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.mu.Lock()
				r.idx = (r.idx + 1) % len(tooltipTexts)
				text := tooltipTexts[r.idx]
				r.mu.Unlock()
				r.onChange(text)
			case <-stop:
				return
			}
		}
	}()
}

// Stop halts rotation. Safe to call repeatedly.
func (r *TooltipRotator) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stop != nil {
		close(r.stop)
		r.stop = nil
	}
}

// ReplyLoop surfaces the instant-reply stack on a show/pause cycle while
// the panel stays closed. The engine's UserEngaged flag ends it for good.
type ReplyLoop struct {
	replies []string
	onShow  func([]string)
	onHide  func()

	mu   sync.Mutex
	stop chan struct{}
}

// NewReplyLoop creates a loop over the given reply texts. Both callbacks
// run on the loop's goroutine; either may be nil.
func NewReplyLoop(replies []string, onShow func([]string), onHide func()) *ReplyLoop {
	return &ReplyLoop{replies: replies, onShow: onShow, onHide: onHide}
}

// Start begins the show/pause cycle. A loop with no replies never fires.
// Calling Start on a running loop is a no-op.
func (l *ReplyLoop) Start() {
	if len(l.replies) == 0 {
		return
	}
	l.mu.Lock()
	if l.stop != nil {
		l.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	l.stop = stop
	l.mu.Unlock()

	go func() {
		for {
			if l.onShow != nil {
				l.onShow(l.replies)
			}
			select {
			case <-time.After(replyShowFor):
			case <-stop:
				return
			}
			if l.onHide != nil {
				l.onHide()
			}
			select {
			case <-time.After(replyPause):
			case <-stop:
				return
			}
		}
	}()
}

// Stop halts the cycle. Safe to call repeatedly.
func (l *ReplyLoop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stop != nil {
		close(l.stop)
		l.stop = nil
	}
}
