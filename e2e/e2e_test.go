package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ayusman/beyondwords/internal/app"
	"github.com/ayusman/beyondwords/internal/config"
	"github.com/ayusman/beyondwords/internal/server"
)

// fastConfig runs a simulated journey in a few seconds.
func fastConfig(t *testing.T) config.Config {
	cfg := config.Defaults()
	cfg.Simulate = true
	cfg.Seed = 7
	cfg.Addr = "127.0.0.1:0"
	cfg.DBPath = filepath.Join(t.TempDir(), "data.db")
	cfg.HooksDir = ""
	cfg.Narrative.TitleMin = 100 * time.Millisecond
	cfg.Narrative.ReflectionMin = 100 * time.Millisecond
	cfg.Narrative.Hold = 300 * time.Millisecond
	cfg.Narrative.CompletionPrompt = 100 * time.Millisecond
	cfg.Narrative.CompletionDelay = 200 * time.Millisecond
	cfg.Narrative.TransitionStyle = "simple"
	return cfg
}

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type frame struct {
	Phase   string `json:"phase"`
	Chapter int    `json:"chapter"`
	Signals struct {
		Completion bool `json:"completion"`
	} `json:"signals"`
}

func getStatus(t *testing.T, client *http.Client, url string) server.Status {
	t.Helper()
	resp, err := client.Get(url + "/api/status")
	if err != nil {
		t.Fatalf("GET /api/status error = %v", err)
	}
	defer resp.Body.Close()
	var st server.Status
	json.NewDecoder(resp.Body).Decode(&st)
	return st
}

func TestE2E_SimulatedJourney(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	application, err := app.New(fastConfig(t), zerolog.Nop())
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	defer application.Close()

	ts := httptest.NewServer(application.Handler())
	defer ts.Close()
	client := ts.Client()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial renderer: %v", err)
	}
	defer conn.Close()
	if err := conn.WriteJSON(map[string]any{"type": "resize", "width": 1000, "height": 500}); err != nil {
		t.Fatalf("send resize: %v", err)
	}
	if err := conn.WriteJSON(map[string]string{"type": "audio-ready"}); err != nil {
		t.Fatalf("send audio-ready: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- application.Run(ctx) }()

	t.Run("RendererSeesWholeJourney", func(t *testing.T) {
		scenes := map[int]bool{}
		audio := 0
		deadline := time.Now().Add(30 * time.Second)
		for {
			conn.SetReadDeadline(deadline)
			var msg envelope
			if err := conn.ReadJSON(&msg); err != nil {
				t.Fatalf("renderer read: %v", err)
			}
			switch msg.Type {
			case "scene":
				var sm struct {
					Chapter int `json:"chapter"`
				}
				json.Unmarshal(msg.Data, &sm)
				scenes[sm.Chapter] = true
			case "audio":
				audio++
			case "frame":
				var f frame
				json.Unmarshal(msg.Data, &f)
				if f.Signals.Completion {
					if f.Phase != "complete" || f.Chapter != 2 {
						t.Errorf("completion in %s of chapter %d", f.Phase, f.Chapter)
					}
					if len(scenes) != 3 {
						t.Errorf("scenes for %d chapters, want 3", len(scenes))
					}
					if audio == 0 {
						t.Error("audio-ready renderer received no audio")
					}
					return
				}
			}
		}
	})

	// Keep reading so the hub does not drop the renderer as slow.
	go func() {
		conn.SetReadDeadline(time.Time{})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	t.Run("StatusAndRestart", func(t *testing.T) {
		before := getStatus(t, client, ts.URL)
		if before.Phase != "complete" {
			t.Fatalf("status phase = %q, want complete", before.Phase)
		}
		if before.Renderers != 1 || !before.AudioReady {
			t.Errorf("status = %+v, want one audio-ready renderer", before)
		}

		resp, err := client.Post(ts.URL+"/api/restart", "application/json", nil)
		if err != nil {
			t.Fatalf("POST /api/restart error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusAccepted {
			t.Fatalf("restart status = %d, want %d", resp.StatusCode, http.StatusAccepted)
		}

		deadline := time.Now().Add(5 * time.Second)
		for {
			st := getStatus(t, client, ts.URL)
			if st.Session != before.Session && st.Chapter == 0 {
				break
			}
			if time.Now().After(deadline) {
				t.Fatalf("journey did not restart, status = %+v", st)
			}
			time.Sleep(20 * time.Millisecond)
		}
	})

	cancel()
	if err := <-runErr; err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	t.Run("SessionsJournaled", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/sessions")
		if err != nil {
			t.Fatalf("GET /api/sessions error = %v", err)
		}
		defer resp.Body.Close()

		var listed struct {
			Sessions []struct {
				ID        string     `json:"id"`
				Completed bool       `json:"completed"`
				EndedAt   *time.Time `json:"ended_at"`
			} `json:"sessions"`
		}
		json.NewDecoder(resp.Body).Decode(&listed)

		if len(listed.Sessions) != 2 {
			t.Fatalf("len(sessions) = %d, want 2", len(listed.Sessions))
		}
		completed := 0
		for _, s := range listed.Sessions {
			if s.Completed {
				completed++
			}
			if s.EndedAt == nil {
				t.Errorf("session %s was not ended", s.ID)
			}
		}
		if completed != 1 {
			t.Errorf("completed sessions = %d, want 1", completed)
		}
	})
}

func TestE2E_HealthAndMetrics(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	application, err := app.New(fastConfig(t), zerolog.Nop())
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	defer application.Close()

	ts := httptest.NewServer(application.Handler())
	defer ts.Close()

	for _, path := range []string{"/api/health", "/metrics", "/api/sessions"} {
		resp, err := ts.Client().Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s error = %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d, want %d", path, resp.StatusCode, http.StatusOK)
		}
	}
}
