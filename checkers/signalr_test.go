package checkers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/jonwraymond/healthops/health"
)

type hubConfig struct {
	negotiateStatus int
	transports      string
	handshakeReply  string
}

func hubServer(t *testing.T, cfg hubConfig) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{}
	mux := http.NewServeMux()
	mux.HandleFunc("/chat/negotiate", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Query().Get("negotiateVersion") != "1" {
			http.Error(w, "bad negotiate", http.StatusBadRequest)
			return
		}
		if cfg.negotiateStatus != 0 {
			w.WriteHeader(cfg.negotiateStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"connectionId":"abc","connectionToken":"tok","negotiateVersion":1,"availableTransports":[%s]}`, cfg.transports)
	})
	mux.HandleFunc("/chat", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") != "tok" {
			http.Error(w, "unknown connection", http.StatusNotFound)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if string(msg) != signalRHandshake {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unexpected handshake"}`+recordSeparator))
			return
		}
		_ = conn.WriteMessage(websocket.TextMessage, []byte(cfg.handshakeReply))
		_, _, _ = conn.ReadMessage()
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

const webSockets = `{"transport":"WebSockets","transferFormats":["Text","Binary"]}`

func TestSignalR_Check(t *testing.T) {
	tests := []struct {
		name          string
		cfg           hubConfig
		want          health.Status
		wantTransport string
		wantErr       error
	}{
		{
			name:          "websocket handshake",
			cfg:           hubConfig{transports: webSockets, handshakeReply: "{}" + recordSeparator},
			want:          health.StatusHealthy,
			wantTransport: "WebSockets",
		},
		{
			name:    "handshake rejected",
			cfg:     hubConfig{transports: webSockets, handshakeReply: `{"error":"protocol not supported"}` + recordSeparator},
			want:    health.StatusUnhealthy,
			wantErr: ErrHandshakeRejected,
		},
		{
			name:          "long polling only",
			cfg:           hubConfig{transports: `{"transport":"LongPolling","transferFormats":["Text"]}`},
			want:          health.StatusHealthy,
			wantTransport: "negotiate",
		},
		{
			name:    "negotiate fails",
			cfg:     hubConfig{negotiateStatus: http.StatusNotFound},
			want:    health.StatusUnhealthy,
			wantErr: ErrUnexpectedStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := hubServer(t, tt.cfg)

			result := NewSignalR("HUB", srv.URL+"/chat", nil).Check(context.Background())

			if result.Status != tt.want {
				t.Fatalf("Status = %v, want %v (%s)", result.Status, tt.want, result.Message)
			}
			if tt.wantTransport != "" && result.Details["transport"] != tt.wantTransport {
				t.Errorf("transport = %v, want %s", result.Details["transport"], tt.wantTransport)
			}
			if tt.wantErr != nil && !errors.Is(result.Error, tt.wantErr) {
				t.Errorf("Error = %v, want %v", result.Error, tt.wantErr)
			}
		})
	}
}

func TestSignalR_InvalidURL(t *testing.T) {
	for _, u := range []string{"", "not a url", "::"} {
		if result := NewSignalR("HUB", u, nil).Check(context.Background()); result.Status != health.StatusUnhealthy {
			t.Errorf("Check(%q) Status = %v, want Unhealthy", u, result.Status)
		}
	}
}
