package referral

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CopiedWindow is how long the "copied" indicator stays set.
const CopiedWindow = 2 * time.Second

const (
	shareTitle = "Join me on this amazing platform!"
	shareText  = "Sign up using my referral link and get bonus credits!"
)

// ShareRequest is the payload handed to a native share capability.
type ShareRequest struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url"`
}

// NewShareRequest fills the fixed share template around link.
func NewShareRequest(link string) ShareRequest {
	return ShareRequest{Title: shareTitle, Text: shareText, URL: link}
}

// Sharer is a native share capability.
type Sharer interface {
	Share(ctx context.Context, req ShareRequest) error
}

// ClipboardWriter writes text to the clipboard.
type ClipboardWriter interface {
	WriteText(ctx context.Context, text string) error
}

// Outcome reports which path ShareOrCopy completed through.
type Outcome struct {
	Shared bool
	Copied bool
}

// CopiedIndicator is a transient flag that resets itself after CopiedWindow.
type CopiedIndicator struct {
	mu     sync.Mutex
	window time.Duration
	timer  *time.Timer
	set    bool
}

// NewCopiedIndicator returns an indicator that stays set for window.
func NewCopiedIndicator(window time.Duration) *CopiedIndicator {
	if window <= 0 {
		window = CopiedWindow
	}
	return &CopiedIndicator{window: window}
}

// Mark sets the flag and restarts the reset timer.
func (c *CopiedIndicator) Mark() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set = true
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.window, func() {
		c.mu.Lock()
		c.set = false
		c.mu.Unlock()
	})
}

// Copied reports whether the flag is currently set.
func (c *CopiedIndicator) Copied() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.set
}

// Sharing runs the share-with-clipboard-fallback flow for a referral link.
type Sharing struct {
	log       *zap.Logger
	indicator *CopiedIndicator
}

// NewSharing builds the flow. indicator may be nil when the caller does not
// display the copied state.
func NewSharing(log *zap.Logger, indicator *CopiedIndicator) *Sharing {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sharing{log: log, indicator: indicator}
}

// ShareOrCopy shares link through sharer when one is available and falls back
// to the clipboard when it is not or when sharing fails. Failures are logged
// and never retried.
func (s *Sharing) ShareOrCopy(ctx context.Context, link string, clipboard ClipboardWriter, sharer Sharer) Outcome {
	if sharer != nil {
		err := sharer.Share(ctx, NewShareRequest(link))
		if err == nil {
			return Outcome{Shared: true}
		}
		s.log.Info("share failed, copying link instead", zap.Error(err))
	}
	return Outcome{Copied: s.Copy(ctx, link, clipboard)}
}

// Copy writes link to the clipboard and marks the indicator on success.
func (s *Sharing) Copy(ctx context.Context, link string, clipboard ClipboardWriter) bool {
	if clipboard == nil {
		s.log.Info("no clipboard available for referral link")
		return false
	}
	if err := clipboard.WriteText(ctx, link); err != nil {
		s.log.Info("copy referral link failed", zap.Error(err))
		return false
	}
	if s.indicator != nil {
		s.indicator.Mark()
	}
	return true
}
