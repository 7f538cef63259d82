package tutorsvc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/neolearn/neolearn/core"
	"github.com/neolearn/neolearn/core/tutor"
)

func newTestClient(handler http.HandlerFunc) (*GeminiClient, *httptest.Server) {
	srv := httptest.NewServer(handler)
	conf := &core.Config{Tutor: core.TutorConfig{Model: "gemini-2.0-flash-001", APIKey: "test-key"}}
	client := NewGeminiClient(conf)
	client.baseURL = srv.URL
	return client, srv
}

func Test_GeminiClient_Converse(t *testing.T) {
	var gotReq geminiRequest
	var gotPath, gotKey string

	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Sehr gut!"}]}}]}`))
	})
	defer srv.Close()

	history := []tutor.Turn{
		{Role: tutor.RoleUser, Content: "hallo"},
		{Role: tutor.RoleTutor, Content: "Gerne!"},
	}
	reply, err := client.Converse(context.Background(), "Du bist ein Python-Lehrer.", history, "was ist eine Liste?")
	if err != nil {
		t.Fatalf("Converse() failed: %v", err)
	}
	if reply != "Sehr gut!" {
		t.Errorf("reply = %q", reply)
	}

	if gotPath != "/models/gemini-2.0-flash-001:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("key = %q", gotKey)
	}

	// history turns first, tutor turns mapped to the "model" role
	if len(gotReq.Contents) != 3 {
		t.Fatalf("contents = %d, want 3", len(gotReq.Contents))
	}
	if gotReq.Contents[0].Role != "user" || gotReq.Contents[0].Parts[0].Text != "hallo" {
		t.Errorf("contents[0] = %+v", gotReq.Contents[0])
	}
	if gotReq.Contents[1].Role != "model" || gotReq.Contents[1].Parts[0].Text != "Gerne!" {
		t.Errorf("contents[1] = %+v", gotReq.Contents[1])
	}

	// the newest message carries the restated instructions
	last := gotReq.Contents[2]
	want := "SYSTEM: Du bist ein Python-Lehrer.\nUSER: was ist eine Liste?"
	if last.Role != "user" || last.Parts[0].Text != want {
		t.Errorf("contents[2] = %+v, want text %q", last, want)
	}
}

func Test_GeminiClient_Converse_errors(t *testing.T) {
	t.Run("no API key", func(t *testing.T) {
		client := NewGeminiClient(&core.Config{Tutor: core.TutorConfig{Model: "m"}})
		_, err := client.Converse(context.Background(), "p", nil, "m")
		if !tutor.IsTransportError(err) {
			t.Errorf("error = %v, want a transport error", err)
		}
	})

	t.Run("non-200 status", func(t *testing.T) {
		client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded"}}`))
		})
		defer srv.Close()

		_, err := client.Converse(context.Background(), "p", nil, "m")
		if !tutor.IsTransportError(err) {
			t.Errorf("error = %v, want a transport error", err)
		}
	})

	t.Run("empty candidates", func(t *testing.T) {
		client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"candidates":[]}`))
		})
		defer srv.Close()

		_, err := client.Converse(context.Background(), "p", nil, "m")
		if !tutor.IsTransportError(err) {
			t.Errorf("error = %v, want a transport error", err)
		}
	})

	t.Run("connection refused", func(t *testing.T) {
		client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {})
		srv.Close()

		_, err := client.Converse(context.Background(), "p", nil, "m")
		if !tutor.IsTransportError(err) {
			t.Errorf("error = %v, want a transport error", err)
		}
	})
}
