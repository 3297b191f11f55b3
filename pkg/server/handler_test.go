package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc, nil).RegisterRoutes(r)
	return r
}

func doRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandlerCreateAndGet(t *testing.T) {
	svc := newTestService(newMemStore(), loopModel(`{"query":"q"}`), staticRetriever{text: "t"})
	r := newTestRouter(svc)

	w := doRequest(r, http.MethodPost, "/api/research", map[string]any{"topic": "Benefits of Miele WTI 360", "max_loops": 0})
	if w.Code != http.StatusCreated {
		t.Fatalf("POST status = %d, body = %s", w.Code, w.Body.String())
	}
	var created Run
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created run: %v", err)
	}
	svc.Wait()

	w = doRequest(r, http.MethodGet, "/api/research/"+created.ID.String(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET status = %d", w.Code)
	}
	var got Run
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode run: %v", err)
	}
	if got.Status != StatusCompleted || got.MaxLoops != 0 {
		t.Errorf("run = %+v", got)
	}

	w = doRequest(r, http.MethodGet, "/api/research/"+created.ID.String()+"/logs", nil)
	if w.Code != http.StatusOK {
		t.Errorf("GET logs status = %d", w.Code)
	}
}

func TestHandlerStatusCodes(t *testing.T) {
	svc := newTestService(newMemStore(), loopModel(`{"query":"q"}`), staticRetriever{})
	r := newTestRouter(svc)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"bad uuid", http.MethodGet, "/api/research/not-a-uuid", nil, http.StatusBadRequest},
		{"bad uuid logs", http.MethodGet, "/api/research/not-a-uuid/logs", nil, http.StatusBadRequest},
		{"unknown run", http.MethodGet, "/api/research/" + uuid.NewString(), nil, http.StatusNotFound},
		{"unknown run logs", http.MethodGet, "/api/research/" + uuid.NewString() + "/logs", nil, http.StatusNotFound},
		{"empty topic", http.MethodPost, "/api/research", map[string]any{"topic": ""}, http.StatusBadRequest},
		{"negative loops", http.MethodPost, "/api/research", map[string]any{"topic": "t", "max_loops": -2}, http.StatusBadRequest},
		{"health", http.MethodGet, "/healthz", nil, http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, tt.method, tt.path, tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestHandlerListEmpty(t *testing.T) {
	svc := newTestService(newMemStore(), loopModel(`{"query":"q"}`), staticRetriever{})
	r := newTestRouter(svc)

	w := doRequest(r, http.MethodGet, "/api/research", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := bytes.TrimSpace(w.Body.Bytes()); string(got) != "[]" {
		t.Errorf("body = %s, want []", got)
	}
}
