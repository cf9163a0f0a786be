package telsend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestConfig_SetDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()

	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %v, want 30s", cfg.HTTPTimeout)
	}
	if cfg.KeepAliveQuota != 64*1024 {
		t.Errorf("KeepAliveQuota = %d, want 65536", cfg.KeepAliveQuota)
	}
	if cfg.BeaconQueueBytes != 64*1024 {
		t.Errorf("BeaconQueueBytes = %d, want 65536", cfg.BeaconQueueBytes)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "zero", cfg: Config{}},
		{name: "preference order", cfg: Config{Transports: []Transport{TransportBeacon, TransportXhr}}},
		{name: "negative timeout", cfg: Config{HTTPTimeout: -time.Second}, wantErr: true},
		{name: "negative grace", cfg: Config{UnloadGrace: -time.Second}, wantErr: true},
		{name: "negative beacon bytes", cfg: Config{BeaconQueueBytes: -1}, wantErr: true},
		{name: "unknown transport", cfg: Config{Transports: []Transport{TransportUnknown}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
		})
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	if _, err := New(Config{HTTPTimeout: -1}); err == nil {
		t.Fatal("expected error for invalid config")
	}
}

type recordingHandler struct {
	mu     sync.Mutex
	events []SendEvent
}

func (h *recordingHandler) OnSendComplete(e SendEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordingHandler) Events() []SendEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]SendEvent(nil), h.events...)
}

func TestClient_SyncSendReportsEventAndMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	handler := &recordingHandler{}
	c, err := New(Config{}, WithMetrics(reg), WithEventHandler(handler))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close(context.Background())

	var got int
	if _, err := c.Send(context.Background(), Payload{URL: srv.URL, Data: []byte("{}")}, ModeSync,
		func(status int, _ map[string]string, _ string) { got = status }); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if got != http.StatusNoContent {
		t.Errorf("status = %d, want 204", got)
	}

	events := handler.Events()
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Transport != TransportFetch || events[0].SendID == "" || events[0].Bytes != 2 {
		t.Errorf("unexpected event %+v", events[0])
	}

	want := `
# HELP telsend_sends_total Logical sends by transport and outcome
# TYPE telsend_sends_total counter
telsend_sends_total{outcome="success",transport="fetch"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want), "telsend_sends_total"); err != nil {
		t.Error(err)
	}
	if c.OutstandingSyncBytes() != 0 {
		t.Errorf("OutstandingSyncBytes() = %d, want 0", c.OutstandingSyncBytes())
	}
}

func TestClient_BeaconQueueDrainsOnClose(t *testing.T) {
	received := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received <- r.Header.Get("Content-Type") + "|" + string(body)
	}))
	defer srv.Close()

	c, err := New(Config{Transports: []Transport{TransportBeacon}},
		WithCapabilities(Capabilities{Beacon: true}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var status int
	if _, err := c.Send(context.Background(), Payload{URL: srv.URL, Data: []byte("hello")}, ModeUnload,
		func(s int, _ map[string]string, _ string) { status = s }); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if status != StatusOK {
		t.Errorf("status = %d, want 200", status)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Close(ctx); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	select {
	case got := <-received:
		if got != "text/plain;charset=UTF-8|hello" {
			t.Errorf("received %q", got)
		}
	default:
		t.Fatal("beacon not delivered before Close returned")
	}

	if err := c.Close(ctx); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestClient_TransportRequestsSkipObserver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	var observed int
	var mu sync.Mutex
	c, err := New(Config{Transports: []Transport{TransportXhr}},
		WithRequestObserver(func(*http.Request, int, time.Duration, error) {
			mu.Lock()
			observed++
			mu.Unlock()
		}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close(context.Background())

	if _, err := c.Send(context.Background(), Payload{URL: srv.URL}, ModeSync, func(int, map[string]string, string) {}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if observed != 0 {
		t.Errorf("observer saw %d transport requests, want 0", observed)
	}
}

func TestClient_SetConfig(t *testing.T) {
	c, err := New(Config{}, WithCapabilities(Capabilities{Beacon: true}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close(context.Background())

	c.SetConfig(TransportConfig{DisableBeacon: true})
	if !c.Config().DisableBeacon {
		t.Fatal("SetConfig not applied")
	}

	var status int
	_, err = c.Send(context.Background(), Payload{URL: "http://127.0.0.1:1"}, ModeAsync,
		func(s int, _ map[string]string, _ string) { status = s })
	if !errors.Is(err, ErrTransportUnavailable) {
		t.Fatalf("Send() error = %v, want ErrTransportUnavailable", err)
	}
	if status != StatusNetworkFailure {
		t.Errorf("status = %d, want 400", status)
	}
}

type mockPlugin struct {
	name    string
	initErr error
	calls   *[]string
	cfg     PluginConfig
}

func (p *mockPlugin) Name() string { return p.name }

func (p *mockPlugin) Initialize(_ context.Context, cfg PluginConfig) error {
	*p.calls = append(*p.calls, "init:"+p.name)
	p.cfg = cfg
	return p.initErr
}

func (p *mockPlugin) Shutdown(context.Context) error {
	*p.calls = append(*p.calls, "shutdown:"+p.name)
	return nil
}

func TestClient_PluginLifecycle(t *testing.T) {
	var calls []string
	a := &mockPlugin{name: "a", calls: &calls}
	b := &mockPlugin{name: "b", calls: &calls}

	c, err := New(Config{ConfigPath: "/etc/telsend.toml"}, WithPlugin(a), WithPlugin(b))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if a.cfg.ConfigPath != "/etc/telsend.toml" || a.cfg.Transport == nil || a.cfg.Logger == nil {
		t.Errorf("unexpected plugin config %+v", a.cfg)
	}

	a.cfg.Transport.SetConfig(TransportConfig{DisableXhr: true})
	if !c.Config().DisableXhr {
		t.Error("plugin SetConfig not applied to client")
	}

	if err := c.Close(context.Background()); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	want := "init:a,init:b,shutdown:b,shutdown:a"
	if got := strings.Join(calls, ","); got != want {
		t.Errorf("calls = %s, want %s", got, want)
	}
}

func TestClient_StartRollsBackOnPluginError(t *testing.T) {
	var calls []string
	a := &mockPlugin{name: "a", calls: &calls}
	b := &mockPlugin{name: "b", calls: &calls, initErr: errors.New("boom")}

	c, err := New(Config{}, WithPlugin(a), WithPlugin(b))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close(context.Background())

	if err := c.Start(context.Background()); err == nil {
		t.Fatal("expected Start() error")
	}

	want := "init:a,init:b,shutdown:a"
	if got := strings.Join(calls, ","); got != want {
		t.Errorf("calls = %s, want %s", got, want)
	}
}
