package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// AnkiHandler answers one AnkiConnect action. A non-empty errMsg is sent
// as the response's error field.
type AnkiHandler func(params json.RawMessage) (result interface{}, errMsg string)

// AnkiRequest is a request received by FakeAnki.
type AnkiRequest struct {
	Action  string          `json:"action"`
	Version int             `json:"version"`
	Params  json.RawMessage `json:"params"`
}

// FakeAnki is an httptest server speaking the AnkiConnect protocol.
type FakeAnki struct {
	Server *httptest.Server

	mu       sync.Mutex
	handlers map[string]AnkiHandler
	requests []AnkiRequest
	status   int
}

// NewFakeAnki starts a fake AnkiConnect server that is closed with the test.
func NewFakeAnki(t *testing.T) *FakeAnki {
	t.Helper()

	f := &FakeAnki{handlers: make(map[string]AnkiHandler)}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the server's endpoint.
func (f *FakeAnki) URL() string {
	return f.Server.URL
}

// Handle registers fn for action.
func (f *FakeAnki) Handle(action string, fn AnkiHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[action] = fn
}

// Result makes action always answer with result.
func (f *FakeAnki) Result(action string, result interface{}) {
	f.Handle(action, func(json.RawMessage) (interface{}, string) { return result, "" })
}

// Fail makes action always answer with an AnkiConnect error.
func (f *FakeAnki) Fail(action, msg string) {
	f.Handle(action, func(json.RawMessage) (interface{}, string) { return nil, msg })
}

// SetStatus makes every request fail with an HTTP status; 0 restores
// normal operation.
func (f *FakeAnki) SetStatus(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
}

// Requests returns the requests received so far.
func (f *FakeAnki) Requests() []AnkiRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]AnkiRequest(nil), f.requests...)
}

// Calls counts the requests for action.
func (f *FakeAnki) Calls(action string) int {
	n := 0
	for _, r := range f.Requests() {
		if r.Action == action {
			n++
		}
	}
	return n
}

func (f *FakeAnki) serve(w http.ResponseWriter, r *http.Request) {
	var req AnkiRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.requests = append(f.requests, req)
	handler, ok := f.handlers[req.Action]
	status := f.status
	f.mu.Unlock()

	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}

	var result interface{}
	errMsg := ""
	if ok {
		result, errMsg = handler(req.Params)
	} else {
		errMsg = fmt.Sprintf("unsupported action %q", req.Action)
	}

	resp := map[string]interface{}{"result": result, "error": nil}
	if errMsg != "" {
		resp["result"] = nil
		resp["error"] = errMsg
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
