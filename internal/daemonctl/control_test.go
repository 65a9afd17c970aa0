package daemonctl

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHealthURL(t *testing.T) {
	cases := map[string]string{
		"127.0.0.1:7487": "http://127.0.0.1:7487/healthz",
		"0.0.0.0:7487":   "http://127.0.0.1:7487/healthz",
		":7487":          "http://127.0.0.1:7487/healthz",
		"[::]:80":        "http://127.0.0.1:80/healthz",
	}
	for bind, want := range cases {
		if got := HealthURL(bind); got != want {
			t.Errorf("HealthURL(%q) = %q, want %q", bind, got, want)
		}
	}
}

func TestProbe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok","database":"ok","startedAt":"2024-05-01T10:00:00.000Z"}`))
	}))
	defer server.Close()

	health, err := Probe(context.Background(), server.Client(), strings.TrimPrefix(server.URL, "http://"))
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if health.Status != "ok" || health.StartedAt == "" {
		t.Fatalf("unexpected health %+v", health)
	}
}

func TestProbeNotRunning(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	bind := strings.TrimPrefix(server.URL, "http://")
	server.Close()

	_, err := Probe(context.Background(), nil, bind)
	if !errors.Is(err, ErrDaemonNotRunning) {
		t.Fatalf("expected ErrDaemonNotRunning, got %v", err)
	}
}

func TestReadPIDAndStop(t *testing.T) {
	dir := t.TempDir()
	pidPath := filepath.Join(dir, "backofficed.pid")

	pid, err := ReadPID(pidPath)
	if err != nil || pid != 0 {
		t.Fatalf("missing pid file: got %d, %v", pid, err)
	}
	if _, err := Stop(nil, pidPath, 0); !errors.Is(err, ErrDaemonNotRunning) {
		t.Fatalf("expected ErrDaemonNotRunning, got %v", err)
	}

	if err := os.WriteFile(pidPath, []byte("garbage\n"), 0o644); err != nil {
		t.Fatalf("write pid: %v", err)
	}
	if _, err := ReadPID(pidPath); err == nil {
		t.Fatal("expected invalid pid error")
	}

	if err := os.WriteFile(pidPath, []byte("1\n"), 0o644); err != nil {
		t.Fatalf("write pid: %v", err)
	}
	if pid, err := ReadPID(pidPath); err != nil || pid != 1 {
		t.Fatalf("got %d, %v", pid, err)
	}
}

func TestAliveCurrentProcess(t *testing.T) {
	if !Alive(os.Getpid()) {
		t.Fatal("current process should be alive")
	}
	if Alive(0) {
		t.Fatal("pid 0 is never alive")
	}
}
