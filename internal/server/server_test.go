package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vitormoschetta/gemini-relay/internal/config"
	"github.com/vitormoschetta/gemini-relay/internal/handler"
	"github.com/vitormoschetta/gemini-relay/internal/metrics"
	"github.com/vitormoschetta/gemini-relay/internal/model"
	"github.com/vitormoschetta/gemini-relay/internal/service"
)

type stubGenerator struct{ text string }

func (s stubGenerator) Generate(context.Context, string, string) (string, error) {
	return s.text, nil
}

func newTestServer(t *testing.T, cfg config.Config, prom *metrics.Prom) *Server {
	t.Helper()
	relay, err := service.NewRelay(stubGenerator{text: "Hi. There."}, service.WithDefaultModel(cfg.DefaultModel))
	require.NoError(t, err)
	h, err := handler.NewHandler(relay, nil)
	require.NoError(t, err)

	var m metrics.HTTP = metrics.Noop{}
	routes := Routes{Root: h.HandleRoot, Health: h.HandleHealth, Chat: h.HandleChat}
	if prom != nil {
		m = prom
		routes.Metrics = prom.Handler()
	}
	s := NewServer(cfg, m, nil)
	s.SetupRouter(routes)
	return s
}

func testConfig() config.Config {
	cfg := config.Defaults()
	cfg.APIKey = "k"
	return cfg
}

func TestRouter_ChatAndHealth(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"prompt":"hi"}`)))
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotEmpty(t, rr.Header().Get(handler.CorrelationHeader))

	var res model.ChatResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	require.Equal(t, model.ChatResult{Status: model.StatusSuccess, Response: "Hi.\nThere.", Model: config.DefaultModel}, res)

	rr = httptest.NewRecorder()
	s.Router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"status":"healthy","model":"gemini-1.5-flash"}`, rr.Body.String())
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/chat", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRouter_CORSAllowAll(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "https://anything.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)

	require.Equal(t, "https://anything.example", rr.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRouter_CORSAllowList(t *testing.T) {
	cfg := testConfig()
	cfg.AllowedOrigins = []string{"https://app.example"}
	s := newTestServer(t, cfg, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://app.example")
	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)
	require.Equal(t, "https://app.example", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rr = httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)
	require.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_Metrics(t *testing.T) {
	prom := metrics.NewProm("relay_test")
	s := newTestServer(t, testConfig(), prom)

	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	s.Router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `relay_test_http_requests_total{method="GET",route="/health",status="200"} 1`)
}

func TestServe_GracefulShutdown(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServe_RequiresRouter(t *testing.T) {
	s := NewServer(testConfig(), nil, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	require.Error(t, s.Serve(context.Background(), ln))
}
