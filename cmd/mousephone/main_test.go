package main

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/mousephone/client/internal/protocol"
	"github.com/mousephone/client/internal/session"
	"github.com/mousephone/client/internal/transport"
	"github.com/rs/zerolog"
)

// wsServer accepts sockets on /ws and records what arrives.
type wsServer struct {
	host, port string
	msgs       chan []byte
	closes     chan int
}

func newWSServer(t *testing.T) *wsServer {
	t.Helper()
	s := &wsServer{msgs: make(chan []byte, 8), closes: make(chan int, 1)}
	var up websocket.Upgrader
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				var ce *websocket.CloseError
				if errors.As(err, &ce) {
					select {
					case s.closes <- ce.Code:
					default:
					}
				}
				return
			}
			s.msgs <- data
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	host, port, err := net.SplitHostPort(srv.Listener.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	s.host, s.port = host, port
	return s
}

func (s *wsServer) expectMessage(t *testing.T) protocol.Message {
	t.Helper()
	select {
	case data := <-s.msgs:
		msg, err := protocol.Decode(data)
		if err != nil {
			t.Fatalf("decode %s: %v", data, err)
		}
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("no message arrived")
		return nil
	}
}

func (s *wsServer) expectClose(t *testing.T, code int) {
	t.Helper()
	select {
	case got := <-s.closes:
		if got != code {
			t.Fatalf("close code = %d, want %d", got, code)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("socket was not closed")
	}
}

func newTestChannel() *session.Channel {
	ws := transport.NewWebSocket(transport.Options{}, zerolog.Nop())
	return session.NewChannel(ws, "/ws", zerolog.Nop())
}

func TestRootHasSubcommands(t *testing.T) {
	root := newRootCmd()
	want := map[string]bool{"validate": false, "click": false, "move": false}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Fatalf("root command missing %q", name)
		}
	}
}

func TestValidateCmd(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{
			name: "valid",
			args: []string{"validate", "192.168.1.5", "8080"},
			want: "host: ok\nport: ok\n",
		},
		{
			name:    "bad host and port",
			args:    []string{"validate", "localhost", "0"},
			want:    "host: invalid host\nport: port must be between 1 and 65535\n",
			wantErr: true,
		},
		{
			name:    "empty host",
			args:    []string{"validate", "", "80"},
			want:    "host: host cannot be empty\nport: ok\n",
			wantErr: true,
		},
		{
			name: "json valid",
			args: []string{"validate", "--json", "10.0.0.1", "65535"},
			want: "{\"isSubmittable\":true}\n",
		},
		{
			name:    "json invalid",
			args:    []string{"validate", "--json", "10.0.0.256", "1"},
			want:    "{\"hostError\":\"invalid host\",\"isSubmittable\":false}\n",
			wantErr: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			root := newRootCmd()
			var out bytes.Buffer
			root.SetOut(&out)
			root.SetArgs(tc.args)
			err := root.Execute()
			if tc.wantErr != (err != nil) {
				t.Fatalf("Execute() error = %v, wantErr %v", err, tc.wantErr)
			}
			if tc.wantErr && !errors.Is(err, errNotSubmittable) {
				t.Fatalf("error = %v, want errNotSubmittable", err)
			}
			if out.String() != tc.want {
				t.Fatalf("output = %q, want %q", out.String(), tc.want)
			}
		})
	}
}

func TestParseMove(t *testing.T) {
	tests := []struct {
		dx, dy  string
		want    protocol.Move
		wantErr string
	}{
		{dx: "10", dy: "-2.5", want: protocol.Move{DX: 10, DY: -2.5}},
		{dx: "0", dy: "0", want: protocol.Move{}},
		{dx: "left", dy: "1", wantErr: "dx"},
		{dx: "1", dy: "", wantErr: "dy"},
	}
	for _, tc := range tests {
		got, err := parseMove(tc.dx, tc.dy)
		if tc.wantErr != "" {
			if err == nil || !strings.HasPrefix(err.Error(), tc.wantErr) {
				t.Fatalf("parseMove(%q, %q) error = %v, want %s error", tc.dx, tc.dy, err, tc.wantErr)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseMove(%q, %q) error: %v", tc.dx, tc.dy, err)
		}
		if got != tc.want {
			t.Fatalf("parseMove(%q, %q) = %+v, want %+v", tc.dx, tc.dy, got, tc.want)
		}
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mousephone.yaml")
	body := "server:\n  host: \"10.0.0.9\"\n  port: \"7000\"\nlog:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	var f globalFlags
	cmd := &cobra.Command{Use: "test"}
	f.register(cmd)
	if err := cmd.ParseFlags([]string{"--config", path, "--port", "9000"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := f.load(cmd)
	if err != nil {
		t.Fatalf("load() error: %v", err)
	}
	if cfg.Server.Host != "10.0.0.9" {
		t.Errorf("Host = %q, want value from file", cfg.Server.Host)
	}
	if cfg.Server.Port != "9000" {
		t.Errorf("Port = %q, want flag value 9000", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want value from file", cfg.Log.Level)
	}
}

func TestNewEngineQuiet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mousephone.toml")
	body := "[server]\nhost = \"10.0.0.9\"\n\n[log]\nlevel = \"debug\"\nfile = \"client.log\"\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		args      []string
		wantLevel string
	}{
		{name: "defaults to warn on stderr", args: []string{"--config", path}, wantLevel: "warn"},
		{name: "flag wins", args: []string{"--config", path, "--log-level", "error"}, wantLevel: "error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var f globalFlags
			cmd := &cobra.Command{Use: "test"}
			f.register(cmd)
			if err := cmd.ParseFlags(tc.args); err != nil {
				t.Fatal(err)
			}
			e, err := newEngine(cmd, f, true)
			if err != nil {
				t.Fatalf("newEngine() error: %v", err)
			}
			defer e.Close()
			if e.cfg.Server.Host != "10.0.0.9" {
				t.Errorf("Host = %q, want value from file", e.cfg.Server.Host)
			}
			if e.cfg.Log.File != "-" {
				t.Errorf("Log.File = %q, want stderr", e.cfg.Log.File)
			}
			if e.cfg.Log.Level != tc.wantLevel {
				t.Errorf("Log.Level = %q, want %q", e.cfg.Log.Level, tc.wantLevel)
			}
			if e.channel.State().Kind != session.Idle {
				t.Errorf("channel state = %s, want idle", e.channel.State())
			}
		})
	}
}

func TestLoadMissingConfigFallsBack(t *testing.T) {
	var f globalFlags
	cmd := &cobra.Command{Use: "test"}
	f.register(cmd)
	if err := cmd.ParseFlags([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")}); err != nil {
		t.Fatal(err)
	}
	cfg, err := f.load(cmd)
	if err != nil {
		t.Fatalf("load() error: %v", err)
	}
	if cfg == nil || cfg.Server.Port != "8080" {
		t.Fatalf("load() = %+v, want defaults", cfg)
	}
}

func TestLoadBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte(":::not valid yaml"), 0644); err != nil {
		t.Fatal(err)
	}
	var f globalFlags
	cmd := &cobra.Command{Use: "test"}
	f.register(cmd)
	if err := cmd.ParseFlags([]string{"--config", path}); err != nil {
		t.Fatal(err)
	}
	if cfg, err := f.load(cmd); err == nil || cfg != nil {
		t.Fatalf("load() = %v, %v; want nil config and an error", cfg, err)
	}
}

func TestDeliver(t *testing.T) {
	srv := newWSServer(t)
	ch := newTestChannel()

	err := deliver(context.Background(), ch, srv.host, srv.port, protocol.Move{DX: 3, DY: -4}, 5*time.Second)
	if err != nil {
		t.Fatalf("deliver() error: %v", err)
	}
	if got := srv.expectMessage(t); got != (protocol.Move{DX: 3, DY: -4}) {
		t.Fatalf("server got %#v", got)
	}
	srv.expectClose(t, transport.CloseNormal)
	if st := ch.State(); st.Kind != session.Disconnected {
		t.Fatalf("state after deliver = %s, want disconnected", st)
	}
	if sent, dropped := ch.Stats(); sent != 1 || dropped != 0 {
		t.Fatalf("Stats() = %d sent, %d dropped", sent, dropped)
	}
}

func TestDeliverRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	_, port, _ := net.SplitHostPort(ln.Addr().String())
	ln.Close()

	err = deliver(context.Background(), newTestChannel(), "127.0.0.1", port, protocol.Click{}, 5*time.Second)
	if err == nil || !strings.Contains(err.Error(), "failed(") {
		t.Fatalf("deliver() error = %v, want a failed session", err)
	}
}

func TestDeliverInvalidTarget(t *testing.T) {
	ch := newTestChannel()
	err := deliver(context.Background(), ch, "localhost", "80", protocol.Click{}, time.Second)
	if err == nil || !strings.Contains(err.Error(), "invalid host") {
		t.Fatalf("deliver() error = %v", err)
	}
	if ch.SessionID() != "" {
		t.Fatal("an invalid target must not start a session")
	}
}

func TestClickCmd(t *testing.T) {
	srv := newWSServer(t)

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"click", "right", "--host", srv.host, "--port", srv.port, "--log-level", "error"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if got := srv.expectMessage(t); got != (protocol.Click{Button: protocol.Right}) {
		t.Fatalf("server got %#v", got)
	}
	srv.expectClose(t, transport.CloseNormal)
	want := "sent click to " + srv.host + ":" + srv.port + "\n"
	if out.String() != want {
		t.Fatalf("output = %q, want %q", out.String(), want)
	}
}

func TestClickCmdRejectsButton(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"click", "middle", "--host", "127.0.0.1", "--port", "1"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected an error for an unknown button")
	}
}
