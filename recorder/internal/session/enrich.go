// CLAUDE:SUMMARY waitForNavigation enrichment: tab updates shortly after a click flag that click for replay waiting.
package session

import (
	"time"

	"github.com/hazyhaar/recflow/flow"
)

// NotifyTabUpdate records that a tab navigated or changed its top-level
// URL. When the update lands within the enrichment window of the most
// recent click (or dblclick), that step gains after.waitForNavigation so
// replay waits for the page the click caused. A second update inside the
// debounce window is ignored.
//
// This is a heuristic: a meta-refresh or script-driven navigation inside
// the window also enriches the last click. It only ever annotates an
// existing step, never creates one.
func (c *Coordinator) NotifyTabUpdate(tabID string) {
	c.mu.Lock()

	if c.status != StatusRecording || c.flow == nil || c.lastClick.stepID == "" {
		c.mu.Unlock()
		return
	}

	now := time.Now()
	if now.Sub(c.lastClick.at) > c.cfg.EnrichWindow {
		c.mu.Unlock()
		return
	}
	if !c.lastClick.enrichedAt.IsZero() && now.Sub(c.lastClick.enrichedAt) < c.cfg.EnrichDebounce {
		c.mu.Unlock()
		return
	}

	step := c.flow.FindStep(c.lastClick.stepID)
	if step == nil {
		c.mu.Unlock()
		return
	}
	if step.After == nil {
		step.After = &flow.After{}
	}
	step.After.WaitForNavigation = true
	c.lastClick.enrichedAt = now

	timeline := append([]flow.Step(nil), c.flow.Steps...)
	tabs := c.tabsLocked()
	stepID := step.ID
	c.mu.Unlock()

	c.logger.Debug("session: click enriched with waitForNavigation",
		"tab", tabID, "step", stepID)
	c.broadcast(tabs, timeline)
}
