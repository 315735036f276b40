package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(url string) *Client {
	return NewClient(Config{
		BaseURL: url,
		APIKey:  "re_test",
		From:    "no-reply@example.com",
		To:      "owner@example.com",
		Timeout: 2 * time.Second,
	})
}

func TestClient_Send_Success(t *testing.T) {
	var got SendEmailRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/emails" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer re_test" {
			t.Errorf("expected bearer auth, got %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_123"}`))
	}))
	defer srv.Close()

	id, err := newTestClient(srv.URL+"/").Send(context.Background(), Message{
		Subject: "hello",
		Text:    "body",
		ReplyTo: "ada@x.com",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if id != "msg_123" {
		t.Errorf("expected id msg_123, got %q", id)
	}
	if got.From != "no-reply@example.com" || len(got.To) != 1 || got.To[0] != "owner@example.com" {
		t.Errorf("unexpected addressing: %+v", got)
	}
	if got.Subject != "hello" || got.Text != "body" || got.ReplyTo != "ada@x.com" {
		t.Errorf("unexpected payload: %+v", got)
	}
}

func TestClient_Send_AcceptedWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).Send(context.Background(), Message{Subject: "s"}); err != nil {
		t.Fatalf("expected 202 with empty body to succeed, got %v", err)
	}
}

func TestClient_Send_AcceptedWithPlainTextBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("queued"))
	}))
	defer srv.Close()

	id, err := newTestClient(srv.URL).Send(context.Background(), Message{Subject: "s"})
	if err != nil {
		t.Fatalf("expected 202 with plain text body to succeed, got %v", err)
	}
	if id != "" {
		t.Errorf("expected no message id, got %q", id)
	}
}

func TestClient_Send_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid from"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Send(context.Background(), Message{Subject: "s"})
	if !errors.Is(err, ErrNotification) {
		t.Fatalf("expected ErrNotification, got %v", err)
	}
}

func TestClient_Send_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url).Send(context.Background(), Message{Subject: "s"})
	if !errors.Is(err, ErrNotification) {
		t.Fatalf("expected ErrNotification, got %v", err)
	}
}

func TestClient_Send_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(Config{
		BaseURL: srv.URL,
		APIKey:  "re_test",
		From:    "a@example.com",
		To:      "b@example.com",
		Timeout: 50 * time.Millisecond,
	})

	_, err := c.Send(context.Background(), Message{Subject: "s"})
	if !errors.Is(err, ErrNotification) {
		t.Fatalf("expected ErrNotification on timeout, got %v", err)
	}
}

func TestClient_Send_NotConfigured(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, From: "a@example.com", To: "b@example.com"})
	if c.IsConfigured() {
		t.Fatal("expected client without api key to be unconfigured")
	}

	_, err := c.Send(context.Background(), Message{Subject: "s"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Error("unconfigured client must not call the provider")
	}
}
