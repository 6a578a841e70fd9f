package bridge

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/cloudsim-rl/cloudsim-core/sim"
)

func testSettings(t *testing.T) sim.SimulationSettings {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "trace.csv")
	if err := os.WriteFile(path, []byte("job_id,arrival_time,mi,allocated_cores\n1,0,5000,1\n"), 0o644); err != nil {
		t.Fatalf("writing trace fixture: %v", err)
	}
	s := sim.DefaultSimulationSettings()
	s.CloudletTraceFile = path
	s.HostsCount = 1
	s.HostPes = 4
	s.InitialSVmCount = 1
	return s
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestServer_Configure_ReturnsRunID(t *testing.T) {
	srv := NewServer()
	rec := postJSON(t, srv.Router(), "/configure", ConfigureRequest{Settings: testSettings(t)})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	var resp ConfigureResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.RunID == "" {
		t.Error("expected a non-empty run id")
	}
}

func TestServer_Configure_RejectsInvalidSettings(t *testing.T) {
	srv := NewServer()
	bad := sim.DefaultSimulationSettings()
	bad.CloudletTraceFile = "/no/such/file.csv"
	rec := postJSON(t, srv.Router(), "/configure", ConfigureRequest{Settings: bad})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for an invalid trace file path", rec.Code)
	}
}

func configureRun(t *testing.T, srv *Server) string {
	t.Helper()
	rec := postJSON(t, srv.Router(), "/configure", ConfigureRequest{Settings: testSettings(t)})
	var resp ConfigureResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding configure response: %v", err)
	}
	return resp.RunID
}

func TestServer_Reset_ReturnsObservationForConfiguredRun(t *testing.T) {
	srv := NewServer()
	runID := configureRun(t, srv)

	rec := postJSON(t, srv.Router(), "/runs/"+runID+"/reset", ResetRequest{Seed: 1})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	var resp ResetResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding reset response: %v", err)
	}
	if resp.Observation.ActualVmCount != 1 {
		t.Errorf("ActualVmCount = %d, want 1", resp.Observation.ActualVmCount)
	}
}

func TestServer_Reset_UnknownRunIDReturns404(t *testing.T) {
	srv := NewServer()
	rec := postJSON(t, srv.Router(), "/runs/does-not-exist/reset", ResetRequest{Seed: 1})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestServer_Step_AppliesDecodedActionAndReturnsReward(t *testing.T) {
	srv := NewServer()
	runID := configureRun(t, srv)
	postJSON(t, srv.Router(), "/runs/"+runID+"/reset", ResetRequest{Seed: 1})

	rec := postJSON(t, srv.Router(), "/runs/"+runID+"/step", StepRequest{ActionType: 0, TargetVmID: -1})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	var resp StepResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding step response: %v", err)
	}
}

func TestServer_Close_RemovesRunSoFurtherCallsReturn404(t *testing.T) {
	srv := NewServer()
	runID := configureRun(t, srv)
	postJSON(t, srv.Router(), "/runs/"+runID+"/reset", ResetRequest{Seed: 1})

	rec := postJSON(t, srv.Router(), "/runs/"+runID+"/close", struct{}{})
	if rec.Code != http.StatusOK {
		t.Fatalf("close status = %d, want 200", rec.Code)
	}

	rec2 := postJSON(t, srv.Router(), "/runs/"+runID+"/step", StepRequest{ActionType: 0, TargetVmID: -1})
	if rec2.Code != http.StatusNotFound {
		t.Errorf("status after close = %d, want 404", rec2.Code)
	}
}
