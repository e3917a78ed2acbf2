package recorder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/recflow/dbopen"
	"github.com/hazyhaar/recflow/flow"
	"github.com/hazyhaar/recflow/flowstore"
	"github.com/hazyhaar/recflow/recorder/internal/config"
)

func testService(t *testing.T) *Service {
	t.Helper()
	db := dbopen.OpenMemory(t)
	flows, err := flowstore.OpenDB(db)
	if err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{}
	cfg.ApplyDefaults()
	return &Service{
		Rec:   New(cfg, nil, flows),
		Flows: flows,
	}
}

func serve(s *Service) *httptest.Server {
	r := chi.NewRouter()
	s.RegisterHTTP(r)
	return httptest.NewServer(r)
}

func TestAPI_Ping(t *testing.T) {
	srv := serve(testService(t))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/ping")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	if body["status"] != "pong" {
		t.Errorf("ping: got %+v", body)
	}
}

func TestAPI_StatusIdle(t *testing.T) {
	srv := serve(testService(t))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/sessions/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var info StatusInfo
	json.NewDecoder(resp.Body).Decode(&info)
	if info.Status != "idle" {
		t.Errorf("status: got %q, want idle", info.Status)
	}
}

func TestAPI_StartWithoutBrowserFails(t *testing.T) {
	srv := serve(testService(t))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/sessions/start", "application/json",
		strings.NewReader(`{"name":"x"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status code: got %d, want 409", resp.StatusCode)
	}
	var body map[string]any
	json.NewDecoder(resp.Body).Decode(&body)
	if body["success"] != false {
		t.Errorf("body: got %+v", body)
	}
}

func TestAPI_FlowsCRUD(t *testing.T) {
	s := testService(t)
	srv := serve(s)
	defer srv.Close()

	f := flow.New("f1", "demo", "")
	f.UpsertSteps([]flow.Step{{ID: "s1", Type: flow.StepClick,
		Target: &flow.Target{Selector: "#b", Tag: "button"}}}, func() string { return "x" })
	if err := s.Flows.Save(context.Background(), f); err != nil {
		t.Fatal(err)
	}

	// list
	resp, err := http.Get(srv.URL + "/api/flows/")
	if err != nil {
		t.Fatal(err)
	}
	var sums []flowstore.Summary
	json.NewDecoder(resp.Body).Decode(&sums)
	resp.Body.Close()
	if len(sums) != 1 || sums[0].ID != "f1" {
		t.Fatalf("list: got %+v", sums)
	}

	// get
	resp, err = http.Get(srv.URL + "/api/flows/f1")
	if err != nil {
		t.Fatal(err)
	}
	var got flow.Flow
	json.NewDecoder(resp.Body).Decode(&got)
	resp.Body.Close()
	if got.ID != "f1" || len(got.Steps) != 1 {
		t.Fatalf("get: got %+v", got)
	}

	// get missing
	resp, _ = http.Get(srv.URL + "/api/flows/nope")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing flow: got %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()

	// delete
	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/flows/f1", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("delete: got %d", resp.StatusCode)
	}

	got2, _ := s.Flows.Get(context.Background(), "f1")
	if got2 != nil {
		t.Error("flow still present after delete")
	}
}
