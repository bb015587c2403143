package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/ddudnik/clipsight/internal/types"
)

func writeTempAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio.wav")
	if err := os.WriteFile(path, []byte("RIFF fake audio"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return path
}

func TestTranscribe_Success(t *testing.T) {
	var gotAuth, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		if r.URL.Path != "/v1/transcribe" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"words":[
			{"word":"hey","start_s":0.1,"end_s":0.3},
			{"word":"there","start_s":-0.5,"end_s":0.6}
		]}`))
	}))
	defer srv.Close()

	tr := NewTranscriber(srv.URL, "secret", 1)
	words, err := tr.Transcribe(context.Background(), writeTempAudio(t))
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if gotType != "audio/wav" {
		t.Fatalf("content type = %q", gotType)
	}
	if len(words) != 2 || words[0].Word != "hey" {
		t.Fatalf("unexpected words: %+v", words)
	}
	if words[1].StartS != 0 {
		t.Fatalf("negative timestamp must clamp to 0, got %v", words[1].StartS)
	}
}

func TestTranscribe_RetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"words":[]}`))
	}))
	defer srv.Close()

	tr := NewTranscriber(srv.URL, "", 3)
	if _, err := tr.Transcribe(context.Background(), writeTempAudio(t)); err != nil {
		t.Fatalf("expected retry to succeed: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 attempts, got %d", got)
	}
}

func TestTranscribe_ExhaustedRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	tr := NewTranscriber(srv.URL, "", 2)
	_, err := tr.Transcribe(context.Background(), writeTempAudio(t))
	if !errors.Is(err, types.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected exactly 2 attempts, got %d", got)
	}
}

func TestTranscribe_FailsFastOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	tr := NewTranscriber(srv.URL, "", 3)
	_, err := tr.Transcribe(context.Background(), writeTempAudio(t))
	if err == nil {
		t.Fatalf("expected an error")
	}
	if errors.Is(err, types.ErrUpstreamUnavailable) {
		t.Fatalf("4xx is not a transient failure: %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("4xx must not be retried, got %d attempts", got)
	}
}

func TestTranscribe_MissingAudioFile(t *testing.T) {
	tr := NewTranscriber("http://127.0.0.1:1", "", 1)
	if _, err := tr.Transcribe(context.Background(), "no-such.wav"); err == nil {
		t.Fatalf("expected an error for missing audio file")
	}
}
