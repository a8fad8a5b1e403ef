package transcription

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGroqClientTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("unexpected auth %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.FormValue("model") != "whisper-large-v3" || r.FormValue("language") != "ar" {
			t.Errorf("unexpected fields %v", r.MultipartForm.Value)
		}
		file, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			data, _ := io.ReadAll(file)
			if string(data) != "OggS-audio" || hdr.Filename != "voice.ogg" {
				t.Errorf("unexpected file %q %q", hdr.Filename, data)
			}
		}
		_, _ = w.Write([]byte(`{"text":"  بدي احجز موعد  "}`))
	}))
	defer srv.Close()

	c, err := NewGroqClient(Config{APIKey: "key", BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	text, err := c.Transcribe(context.Background(), []byte("OggS-audio"), "audio/ogg; codecs=opus")
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if text != "بدي احجز موعد" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestGroqClientNoSpeech(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"text":"   "}`))
	}))
	defer srv.Close()

	c, _ := NewGroqClient(Config{APIKey: "key", BaseURL: srv.URL})
	if _, err := c.Transcribe(context.Background(), []byte("x"), ""); !errors.Is(err, ErrNoSpeech) {
		t.Fatalf("expected ErrNoSpeech, got %v", err)
	}
	if _, err := c.Transcribe(context.Background(), nil, ""); !errors.Is(err, ErrNoSpeech) {
		t.Fatalf("expected ErrNoSpeech for empty audio, got %v", err)
	}
}

func TestGroqClientAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limit reached","type":"rate_limit"}}`))
	}))
	defer srv.Close()

	c, _ := NewGroqClient(Config{APIKey: "key", BaseURL: srv.URL})
	_, err := c.Transcribe(context.Background(), []byte("x"), "audio/ogg")
	if err == nil || !strings.Contains(err.Error(), "rate limit reached") {
		t.Fatalf("expected api error, got %v", err)
	}
}

func TestNewGroqClientRequiresKey(t *testing.T) {
	if _, err := NewGroqClient(Config{}); err == nil {
		t.Fatalf("expected missing key error")
	}
}

func TestFileName(t *testing.T) {
	cases := map[string]string{
		"audio/ogg; codecs=opus": "voice.ogg",
		"audio/mpeg":             "voice.mp3",
		"audio/mp4":              "voice.m4a",
		"audio/amr":              "voice.amr",
	}
	for in, want := range cases {
		if got := fileName(in); got != want {
			t.Fatalf("fileName(%q) = %q, want %q", in, got, want)
		}
	}
}
