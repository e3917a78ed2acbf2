package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Tab wraps a Rod page participating in a recording session.
type Tab struct {
	Page  *rod.Page
	TabID string
}

// OpenTab creates a new tab and navigates it to the URL.
func OpenTab(ctx context.Context, mgr *Manager, pageURL, tabID string) (*Tab, error) {
	b := mgr.Browser()
	if b == nil {
		return nil, fmt.Errorf("browser: no active browser")
	}

	var page *rod.Page
	var err error
	if mgr.Stealth() {
		page, err = stealth.Page(b)
	} else {
		page, err = b.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		page.Close()
		return nil, fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		mgr.cfg.Logger.Warn("browser: wait load timeout", "url", pageURL, "error", err)
	}

	return &Tab{Page: page, TabID: tabID}, nil
}

// AdoptTarget wraps an existing browser target (a tab opened by the page
// itself, e.g. via target=_blank) as a recording Tab.
func AdoptTarget(mgr *Manager, targetID proto.TargetTargetID, tabID string) (*Tab, error) {
	b := mgr.Browser()
	if b == nil {
		return nil, fmt.Errorf("browser: no active browser")
	}
	page, err := b.PageFromTarget(targetID)
	if err != nil {
		return nil, fmt.Errorf("browser: adopt target: %w", err)
	}
	return &Tab{Page: page, TabID: tabID}, nil
}

// URL returns the tab's current top-level URL, or "" when unavailable.
func (t *Tab) URL() string {
	info, err := t.Page.Info()
	if err != nil || info == nil {
		return ""
	}
	return info.URL
}

// Eval runs JS in the page, discarding the result. Errors are returned,
// never thrown into the page.
func (t *Tab) Eval(ctx context.Context, js string) error {
	_, err := t.Page.Context(ctx).Eval(js)
	return err
}

// Close closes the tab.
func (t *Tab) Close() error {
	if t.Page != nil {
		return t.Page.Close()
	}
	return nil
}
