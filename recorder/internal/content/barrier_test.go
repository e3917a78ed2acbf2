package content

import (
	"context"
	"testing"
	"time"

	"github.com/hazyhaar/recflow/flow"
)

func TestStopBarrier_FlushesPendingFill(t *testing.T) {
	r, client := newTestRecorder()

	// Debounce window still open when the barrier runs.
	r.handleInput(inputEvent("q", "", "text", "ab"))

	res := r.stopBarrier()
	if !res.Ack {
		t.Error("ack: got false, want true")
	}
	if res.Steps != 1 {
		t.Errorf("stats steps: got %d, want 1", res.Steps)
	}

	f := client.reconstruct()
	if len(f.Steps) != 1 {
		t.Fatalf("flow steps: got %d, want 1", len(f.Steps))
	}
	if v, _ := f.Steps[0].FillString(); v != "ab" {
		t.Errorf("value: got %q, want ab", v)
	}
	if r.status != StatusIdle {
		t.Errorf("status after barrier: got %s", r.status)
	}
}

func TestStopBarrier_DrainsClickAndScroll(t *testing.T) {
	r, client := newTestRecorder()

	r.handleClick(buttonEvent("b"))
	r.handleScroll(docScroll(0, 250))

	res := r.stopBarrier()
	if !res.Ack {
		t.Error("ack: got false")
	}

	f := client.reconstruct()
	if len(f.Steps) != 2 {
		t.Fatalf("flow steps: got %d, want click+scroll", len(f.Steps))
	}
	if f.Steps[0].Type != flow.StepClick || f.Steps[1].Type != flow.StepScroll {
		t.Errorf("order: got %s, %s", f.Steps[0].Type, f.Steps[1].Type)
	}
	if f.Steps[1].Offset.Y != 250 {
		t.Errorf("scroll offset: got %v", f.Steps[1].Offset)
	}
}

func TestStopBarrier_SendsVariables(t *testing.T) {
	r, client := newTestRecorder()

	r.handleInput(inputEvent("p", "pwd", "password", "hunter2"))
	res := r.stopBarrier()

	if !res.Ack || res.Variables != 1 {
		t.Errorf("result: %+v", res)
	}
	if len(client.vars) != 1 || client.vars[0][0].Key != "pwd" {
		t.Errorf("variables shipped: %+v", client.vars)
	}
}

func TestStopBarrier_AckFalseOnTransportFailure(t *testing.T) {
	r, client := newTestRecorder()
	client.failSteps = true

	r.handleClick(buttonEvent("b"))
	res := r.stopBarrier()

	if res.Ack {
		t.Error("ack: got true despite failed step send")
	}
	// A failed step send does not abort the barrier: the document still
	// ends idle.
	if r.status != StatusIdle {
		t.Errorf("status: got %s, want idle after failed barrier", r.status)
	}
}

func TestStopBarrier_ResetsState(t *testing.T) {
	r, _ := newTestRecorder()

	r.handleClick(buttonEvent("b"))
	r.handleInput(inputEvent("u", "", "text", "x"))
	r.stopBarrier()

	if len(r.buffer) != 0 || len(r.batch) != 0 || len(r.vars) != 0 {
		t.Error("state not reset after barrier")
	}
	if r.pending.fill != nil || r.pending.click != nil || r.pending.scroll != nil {
		t.Error("pending state survived the barrier")
	}
}

func TestPause_FlushesAndIgnores(t *testing.T) {
	r, client := newTestRecorder()

	r.handleInput(inputEvent("u", "", "text", "abc"))
	r.drainPending()
	r.flushBatch()
	r.setStatus(StatusPaused)

	r.handleRaw(buttonEvent("b"))
	r.flushPendingClick()

	f := client.reconstruct()
	if len(f.Steps) != 1 {
		t.Fatalf("flow steps: got %d, want just the pre-pause fill", len(f.Steps))
	}

	// Resume accepts events again.
	r.setStatus(StatusRecording)
	r.handleRaw(buttonEvent("b"))
	r.flushPendingClick()
	if len(r.Snapshot()) != 2 {
		t.Error("resumed recorder ignored events")
	}
}

// TestLoop_TypeThenStop drives the real loop: type "ab", stop 50 ms later
// while the 800 ms-scale debounce window is still open. The final flow
// must contain the fill with the last observed value and ack true.
func TestLoop_TypeThenStop(t *testing.T) {
	client := &stubClient{}
	r := New(Config{
		TabID:  "tab1",
		Client: client,
		Windows: Windows{
			Fill:   800 * time.Millisecond,
			Scroll: 350 * time.Millisecond,
			Click:  300 * time.Millisecond,
			Batch:  100 * time.Millisecond,
		},
	})
	r.Run()
	defer r.Close()

	ctx := context.Background()
	if err := r.Start(ctx, StartMeta{SessionID: "s1"}); err != nil {
		t.Fatalf("Start: %v", err)
	}

	r.HandleBinding(`{"kind":"input","editable":"input","value":"a","el":{"tag":"input","id":"q","idCount":1,"ref":"ref_1"}}`)
	r.HandleBinding(`{"kind":"input","editable":"input","value":"ab","el":{"tag":"input","id":"q","idCount":1,"ref":"ref_1"}}`)

	time.Sleep(50 * time.Millisecond)

	res, err := r.Stop(ctx, "s1", true)
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !res.Ack {
		t.Error("ack: got false")
	}

	f := client.reconstruct()
	if len(f.Steps) != 1 {
		t.Fatalf("flow steps: got %d, want 1", len(f.Steps))
	}
	if v, _ := f.Steps[0].FillString(); v != "ab" {
		t.Errorf("value: got %q, want ab", v)
	}
	if got := r.Status(ctx); got != StatusIdle {
		t.Errorf("status after stop: got %s", got)
	}
}

func TestStop_WhileIdleIsNoOp(t *testing.T) {
	r := New(Config{TabID: "t", Client: &stubClient{}})
	r.Run()
	defer r.Close()

	res, err := r.Stop(context.Background(), "s1", true)
	if err != nil {
		t.Fatalf("Stop idle: %v", err)
	}
	if !res.Ack || res.Steps != 0 {
		t.Errorf("idle stop: got %+v, want empty ack", res)
	}
}

func TestStart_Idempotent(t *testing.T) {
	r := New(Config{TabID: "t", Client: &stubClient{}})
	r.Run()
	defer r.Close()
	ctx := context.Background()

	if err := r.Start(ctx, StartMeta{}); err != nil {
		t.Fatal(err)
	}
	if err := r.Start(ctx, StartMeta{}); err != nil {
		t.Errorf("second start: %v, want no-op", err)
	}

	if err := r.Pause(ctx); err != nil {
		t.Fatal(err)
	}
	// start while paused resumes
	if err := r.Start(ctx, StartMeta{}); err != nil {
		t.Errorf("start while paused: %v", err)
	}
	if got := r.Status(ctx); got != StatusRecording {
		t.Errorf("status: got %s, want recording", got)
	}
}
