package transcription

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"voiceblog/internal/config"
	"voiceblog/internal/services"
	"voiceblog/internal/services/llm"
)

type fakeTranscriber struct {
	text string
	err  error
}

func (f fakeTranscriber) Name() string { return "fake" }

func (f fakeTranscriber) Transcribe(context.Context, string, io.Writer) (string, error) {
	return f.text, f.err
}

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "processed.mp3")
	if err := os.WriteFile(path, []byte("ID3audio"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return path
}

func TestOperationWritesTrimmedTranscript(t *testing.T) {
	input := writeAudio(t)
	output := filepath.Join(t.TempDir(), "transcript.txt")

	op := NewOperation(fakeTranscriber{text: "\n  First paragraph.\n\nSecond.  \n"})
	if err := op.Invoke(context.Background(), input, output, io.Discard); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	if string(data) != "First paragraph.\n\nSecond.\n" {
		t.Fatalf("unexpected transcript %q", data)
	}
	if err := ValidateTranscript(output); err != nil {
		t.Fatalf("ValidateTranscript: %v", err)
	}
}

func TestOperationRejectsEmptyTranscript(t *testing.T) {
	output := filepath.Join(t.TempDir(), "transcript.txt")
	op := NewOperation(fakeTranscriber{text: " \n\t"})
	err := op.Invoke(context.Background(), writeAudio(t), output, nil)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
		t.Fatalf("expected no output written, stat err=%v", statErr)
	}
}

func TestOperationPropagatesProviderError(t *testing.T) {
	boom := errors.New("boom")
	op := NewOperation(fakeTranscriber{err: boom})
	err := op.Invoke(context.Background(), writeAudio(t), filepath.Join(t.TempDir(), "t.txt"), nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestAudioFormat(t *testing.T) {
	cases := map[string][2]string{
		"a.mp3":  {"mp3", "audio/mpeg"},
		"a.WAV":  {"wav", "audio/wav"},
		"a.m4a":  {"m4a", "audio/mp4"},
		"a.xyz":  {"mp3", "audio/mpeg"},
		"noext":  {"mp3", "audio/mpeg"},
		"b.flac": {"flac", "audio/flac"},
	}
	for path, want := range cases {
		format, mime := AudioFormat(path)
		if format != want[0] || mime != want[1] {
			t.Fatalf("AudioFormat(%q) = %q,%q want %q,%q", path, format, mime, want[0], want[1])
		}
	}
}

func TestLLMTranscriberSendsInlineAudio(t *testing.T) {
	input := writeAudio(t)
	var request struct {
		Messages []struct {
			Content []struct {
				Type       string `json:"type"`
				Text       string `json:"text"`
				InputAudio struct {
					Data   string `json:"data"`
					Format string `json:"format"`
				} `json:"input_audio"`
			} `json:"content"`
		} `json:"messages"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": "Hello there."}}},
		})
	}))
	defer server.Close()

	client := llm.NewClient(llm.Config{APIKey: "k", BaseURL: server.URL, Model: "audio-model"}, llm.WithRetryMaxAttempts(1))
	text, err := NewLLM(client).Transcribe(context.Background(), input, io.Discard)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "Hello there." {
		t.Fatalf("unexpected text %q", text)
	}
	if len(request.Messages) != 1 || len(request.Messages[0].Content) != 2 {
		t.Fatalf("unexpected message shape: %+v", request.Messages)
	}
	parts := request.Messages[0].Content
	if parts[0].Type != "text" || !strings.Contains(parts[0].Text, "filler") {
		t.Fatalf("expected redaction prompt first, got %+v", parts[0])
	}
	decoded, err := base64.StdEncoding.DecodeString(parts[1].InputAudio.Data)
	if err != nil || string(decoded) != "ID3audio" || parts[1].InputAudio.Format != "mp3" {
		t.Fatalf("unexpected audio part %+v (err=%v)", parts[1], err)
	}
}

func TestLLMTranscriberMissingFile(t *testing.T) {
	client := llm.NewClient(llm.Config{APIKey: "k", BaseURL: "http://127.0.0.1:1", Model: "m"})
	_, err := NewLLM(client).Transcribe(context.Background(), filepath.Join(t.TempDir(), "missing.mp3"), nil)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestOpenAITranscriberUploadsFile(t *testing.T) {
	input := writeAudio(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Errorf("unexpected model %q", got)
		}
		if got := r.FormValue("language"); got != "en" {
			t.Errorf("unexpected language %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"Spoken words."}`))
	}))
	defer server.Close()

	tr := NewOpenAI(OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL + "/v1", Model: "whisper-1", Language: "en-US"})
	text, err := tr.Transcribe(context.Background(), input, io.Discard)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "Spoken words." {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestOpenAITranscriberServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad audio","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	tr := NewOpenAI(OpenAIConfig{APIKey: "sk", BaseURL: server.URL + "/v1"})
	_, err := tr.Transcribe(context.Background(), writeAudio(t), nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestNewSelectsProvider(t *testing.T) {
	cases := map[string]string{
		ProviderLLM:      "llm:",
		ProviderOpenAI:   "openai:whisper-1",
		ProviderWhisperX: "whisperx:large-v3",
	}
	for provider, prefix := range cases {
		cfg := config.Default()
		cfg.Transcription.Provider = provider
		tr, err := New(&cfg)
		if err != nil {
			t.Fatalf("New(%s): %v", provider, err)
		}
		if !strings.HasPrefix(tr.Name(), prefix) {
			t.Fatalf("New(%s) name = %q, want prefix %q", provider, tr.Name(), prefix)
		}
	}

	cfg := config.Default()
	cfg.Transcription.Provider = "carrier-pigeon"
	if _, err := New(&cfg); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestOperationHealthCheck(t *testing.T) {
	if h := NewOperation(fakeTranscriber{}).HealthCheck(context.Background()); !h.Ready {
		t.Fatalf("expected ready health, got %+v", h)
	}
	if h := NewOperation(nil).HealthCheck(context.Background()); h.Ready {
		t.Fatalf("expected unhealthy without transcriber")
	}
}
