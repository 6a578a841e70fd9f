package bridge

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/cloudsim-rl/cloudsim-core/sim"
)

// run pairs a driver with a mutex so concurrent step calls against the same
// run id serialize rather than race (the core itself is single-threaded
// cooperative).
type run struct {
	mu     sync.Mutex
	driver *sim.Driver
}

// Server holds one Driver per configured run id.
type Server struct {
	mu   sync.Mutex
	runs map[string]*run
}

// NewServer constructs an empty Server.
func NewServer() *Server {
	return &Server{runs: make(map[string]*run)}
}

// Router builds the gorilla/mux route table: configure/reset/step/close per
// run id.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/configure", s.handleConfigure).Methods(http.MethodPost)
	r.HandleFunc("/runs/{runId}/reset", s.handleReset).Methods(http.MethodPost)
	r.HandleFunc("/runs/{runId}/step", s.handleStep).Methods(http.MethodPost)
	r.HandleFunc("/runs/{runId}/close", s.handleClose).Methods(http.MethodPost)
	return r
}

func (s *Server) handleConfigure(w http.ResponseWriter, r *http.Request) {
	var req ConfigureRequest
	if err := fromJSON(&req, r); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := req.Settings.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	runID := uuid.New().String()
	s.mu.Lock()
	s.runs[runID] = &run{driver: sim.NewDriver(req.Settings)}
	s.mu.Unlock()

	logrus.Infof("configured run %s", runID)
	toJSON(w, http.StatusOK, ConfigureResponse{RunID: runID})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	rn, ok := s.lookupRun(r, w)
	if !ok {
		return
	}
	var req ResetRequest
	if err := fromJSON(&req, r); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rn.mu.Lock()
	defer rn.mu.Unlock()
	obs, info, err := rn.driver.Reset(req.Seed)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	toJSON(w, http.StatusOK, ResetResponse{Observation: obs, Info: info})
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	rn, ok := s.lookupRun(r, w)
	if !ok {
		return
	}
	var req StepRequest
	if err := fromJSON(&req, r); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rn.mu.Lock()
	defer rn.mu.Unlock()
	obs, reward, terminated, truncated, info := rn.driver.Step(req.DecodeAction())
	toJSON(w, http.StatusOK, StepResponse{
		Observation: obs,
		Reward:      reward,
		Terminated:  terminated,
		Truncated:   truncated,
		Info:        info,
	})
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["runId"]
	s.mu.Lock()
	rn := s.runs[runID]
	delete(s.runs, runID)
	s.mu.Unlock()
	if rn == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("no run with id %q", runID))
		return
	}
	rn.mu.Lock()
	rn.driver.Close()
	rn.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (s *Server) lookupRun(r *http.Request, w http.ResponseWriter) (*run, bool) {
	runID := mux.Vars(r)["runId"]
	s.mu.Lock()
	rn := s.runs[runID]
	s.mu.Unlock()
	if rn == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("no run with id %q", runID))
		return nil, false
	}
	return rn, true
}

func fromJSON(v any, r *http.Request) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}

func toJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorf("encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	logrus.Warnf("bridge error: %v", err)
	toJSON(w, status, ErrorResponse{Error: err.Error()})
}
