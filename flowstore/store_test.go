package flowstore

import (
	"context"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/recflow/dbopen"
	"github.com/hazyhaar/recflow/flow"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	db := dbopen.OpenMemory(t)
	s, err := OpenDB(db)
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	return s
}

func sampleFlow() *flow.Flow {
	f := flow.New("f1", "login", "records the login form")
	f.UpsertSteps([]flow.Step{
		{ID: "s1", Type: flow.StepNavigate, URL: "https://example.com/login"},
		{ID: "s2", Type: flow.StepFill, Target: &flow.Target{Selector: "#u", Tag: "input"}, Value: "alice"},
		{ID: "s3", Type: flow.StepFill, Target: &flow.Target{Selector: "input[name=\"pwd\"]", Tag: "input"}, Value: "{pwd}"},
		{ID: "s4", Type: flow.StepClick, Target: &flow.Target{Selector: "#submit", Tag: "button"}},
	}, func() string { return "unused" })
	f.UpsertVariables([]flow.VariableDef{{Key: "pwd", Sensitive: true, Default: ""}})
	return f
}

func TestSaveGetRoundtrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, sampleFlow()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Get(ctx, "f1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("Get: flow not found")
	}
	if got.Name != "login" || len(got.Steps) != 4 {
		t.Errorf("flow: got name=%q steps=%d", got.Name, len(got.Steps))
	}
	if got.Steps[2].Value != "{pwd}" {
		t.Errorf("redacted value: got %v, want placeholder", got.Steps[2].Value)
	}
	if len(got.Variables) != 1 || !got.Variables[0].Sensitive {
		t.Errorf("variables: got %+v", got.Variables)
	}
}

func TestSave_Upsert(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	f := sampleFlow()
	if err := s.Save(ctx, f); err != nil {
		t.Fatal(err)
	}

	f.UpsertSteps([]flow.Step{{ID: "s5", Type: flow.StepKey, Keys: "Enter"}},
		func() string { return "x" })
	if err := s.Save(ctx, f); err != nil {
		t.Fatal(err)
	}

	got, _ := s.Get(ctx, "f1")
	if len(got.Steps) != 5 {
		t.Errorf("steps after re-save: got %d, want 5", len(got.Steps))
	}

	sums, err := s.List(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(sums) != 1 {
		t.Fatalf("list after upsert: got %d rows, want 1", len(sums))
	}
	if sums[0].StepCount != 5 {
		t.Errorf("summary step count: got %d, want 5", sums[0].StepCount)
	}
}

func TestGet_Absent(t *testing.T) {
	s := testStore(t)
	got, err := s.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get absent: %v", err)
	}
	if got != nil {
		t.Errorf("Get absent: got %+v, want nil", got)
	}
}

func TestDelete(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	s.Save(ctx, sampleFlow())
	if err := s.Delete(ctx, "f1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, _ := s.Get(ctx, "f1")
	if got != nil {
		t.Error("flow still present after delete")
	}

	if err := s.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete absent id: %v", err)
	}
}
