package content

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/recflow/flow"
	"github.com/hazyhaar/recflow/recorder/internal/selector"
)

// stubClient records everything the recorder ships to the coordinator.
type stubClient struct {
	mu        sync.Mutex
	steps     [][]flow.Step
	vars      [][]flow.VariableDef
	failSteps bool
	failVars  bool
}

func (c *stubClient) SendSteps(_ context.Context, _ string, steps []flow.Step) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := make([]flow.Step, len(steps))
	copy(cp, steps)
	c.steps = append(c.steps, cp)
	return !c.failSteps
}

func (c *stubClient) SendVariables(_ context.Context, _ string, vars []flow.VariableDef) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := make([]flow.VariableDef, len(vars))
	copy(cp, vars)
	c.vars = append(c.vars, cp)
	return !c.failVars
}

func (c *stubClient) allSteps() []flow.Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []flow.Step
	for _, b := range c.steps {
		out = append(out, b...)
	}
	return out
}

// reconstruct replays every shipped batch through a Flow, the way the
// coordinator does, so tests can assert on upsert semantics end to end.
func (c *stubClient) reconstruct() *flow.Flow {
	f := flow.New("test", "test", "")
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, b := range c.steps {
		f.UpsertSteps(b, func() string { return "minted" })
	}
	for _, v := range c.vars {
		f.UpsertVariables(v)
	}
	return f
}

// newTestRecorder returns a recorder in recording state whose handlers are
// driven directly (no loop goroutine), plus its stub client.
func newTestRecorder() (*Recorder, *stubClient) {
	client := &stubClient{}
	r := New(Config{
		TabID:  "tab1",
		Client: client,
		Logger: slog.New(slog.DiscardHandler),
		Windows: Windows{
			Fill:   10 * time.Millisecond,
			Scroll: 10 * time.Millisecond,
			Click:  10 * time.Millisecond,
			Batch:  5 * time.Millisecond,
		},
	})
	r.resetSession()
	r.setStatus(StatusRecording)
	return r, client
}

func buttonEvent(id string) RawEvent {
	return RawEvent{
		Kind: "click",
		El: &selector.ElementDesc{
			Tag: "button", ID: id, IDCount: 1, Ref: "ref_1",
		},
		Detail: 1,
	}
}

func inputEvent(id, name, typ, value string) RawEvent {
	attrs := map[string]string{}
	if name != "" {
		attrs["name"] = name
	}
	if typ != "" {
		attrs["type"] = typ
	}
	return RawEvent{
		Kind: "input",
		El: &selector.ElementDesc{
			Tag: "input", ID: id, IDCount: 1, Attrs: attrs, Ref: "ref_" + id,
		},
		Editable: "input",
		Value:    value,
	}
}
