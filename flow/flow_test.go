package flow

import (
	"encoding/json"
	"fmt"
	"testing"
)

func mintSeq() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("step_%d", n)
	}
}

func TestUpsertSteps_AppendOrder(t *testing.T) {
	f := New("f1", "test", "")
	f.UpsertSteps([]Step{
		{ID: "a", Type: StepClick},
		{ID: "b", Type: StepFill},
		{ID: "c", Type: StepKey},
	}, mintSeq())

	if len(f.Steps) != 3 {
		t.Fatalf("steps: got %d, want 3", len(f.Steps))
	}
	for i, want := range []string{"a", "b", "c"} {
		if f.Steps[i].ID != want {
			t.Errorf("Steps[%d].ID: got %q, want %q", i, f.Steps[i].ID, want)
		}
	}
}

func TestUpsertSteps_ReplacePreservesPosition(t *testing.T) {
	f := New("f1", "test", "")
	f.UpsertSteps([]Step{
		{ID: "a", Type: StepClick},
		{ID: "b", Type: StepFill, Value: "he"},
		{ID: "c", Type: StepKey, Keys: "Tab"},
	}, mintSeq())

	// Debounced fill re-sends the same step id with the final value.
	f.UpsertSteps([]Step{{ID: "b", Type: StepFill, Value: "hello"}}, mintSeq())

	if len(f.Steps) != 3 {
		t.Fatalf("steps after upsert: got %d, want 3", len(f.Steps))
	}
	if f.Steps[1].ID != "b" {
		t.Fatalf("upsert moved step: position 1 holds %q", f.Steps[1].ID)
	}
	if v, _ := f.Steps[1].FillString(); v != "hello" {
		t.Errorf("upserted value: got %q, want %q", v, "hello")
	}
}

func TestUpsertSteps_MintsMissingIDs(t *testing.T) {
	f := New("f1", "test", "")
	f.UpsertSteps([]Step{{Type: StepClick}, {Type: StepScroll}}, mintSeq())

	seen := make(map[string]struct{})
	for i, s := range f.Steps {
		if s.ID == "" {
			t.Fatalf("Steps[%d] has empty id", i)
		}
		if _, dup := seen[s.ID]; dup {
			t.Fatalf("duplicate step id %q", s.ID)
		}
		seen[s.ID] = struct{}{}
	}
}

func TestUpsertVariables_DedupByKey(t *testing.T) {
	f := New("f1", "test", "")
	f.UpsertVariables([]VariableDef{
		{Key: "pwd", Sensitive: true, Default: ""},
		{Key: "file1", Sensitive: false, Default: "a.txt"},
	})
	f.UpsertVariables([]VariableDef{
		{Key: "pwd", Sensitive: true, Default: "changed"},
		{Key: ""},
	})

	if len(f.Variables) != 2 {
		t.Fatalf("variables: got %d, want 2", len(f.Variables))
	}
	if f.Variables[0].Key != "pwd" || f.Variables[0].Default != "changed" {
		t.Errorf("variable[0]: got %+v, want overwritten pwd", f.Variables[0])
	}
}

func TestComposeSelector(t *testing.T) {
	got := ComposeSelector("#f", "#x")
	if got != "#f |> #x" {
		t.Errorf("ComposeSelector: got %q", got)
	}
}

func TestFillBool_SurvivesJSONRoundtrip(t *testing.T) {
	f := New("f1", "test", "")
	f.UpsertSteps([]Step{{
		ID:     "s1",
		Type:   StepFill,
		Target: &Target{Selector: "#agree", Tag: "input"},
		Value:  true,
	}}, mintSeq())

	data, err := Marshal(f)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}

	v, ok := got.Steps[0].FillBool()
	if !ok || v != true {
		t.Errorf("FillBool after roundtrip: got (%v, %v), want (true, true)", v, ok)
	}
}

func TestStepJSON_OmitsEmptyVariantFields(t *testing.T) {
	s := Step{ID: "s1", Type: StepClick, Target: &Target{Selector: "#b", Tag: "button"}}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	json.Unmarshal(data, &m)
	for _, field := range []string{"keys", "url", "offset", "frame", "value"} {
		if _, present := m[field]; present {
			t.Errorf("click step JSON carries unused field %q", field)
		}
	}
}

func TestPlaceholder(t *testing.T) {
	v := VariableDef{Key: "pwd", Sensitive: true}
	if v.Placeholder() != "{pwd}" {
		t.Errorf("Placeholder: got %q", v.Placeholder())
	}
}
