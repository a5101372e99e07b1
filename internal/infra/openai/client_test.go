package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestComplete(t *testing.T) {
	var gotReq map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Great run!"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewClient("key", srv.URL, "test-model")
	text, err := c.Complete(context.Background(), "hello", 0.8, 200)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if text != "Great run!" {
		t.Errorf("Expected 'Great run!', got %q", text)
	}
	if gotReq["model"] != "test-model" {
		t.Errorf("Expected model test-model, got %v", gotReq["model"])
	}
	if gotReq["max_tokens"] != float64(200) {
		t.Errorf("Expected max_tokens 200, got %v", gotReq["max_tokens"])
	}
}

func TestComplete_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"boom"}}`))
	}))
	defer srv.Close()

	c := NewClient("key", srv.URL, "")
	if _, err := c.Complete(context.Background(), "hello", 0.8, 200); err == nil {
		t.Error("Expected error on 500 response")
	}
}

func TestComplete_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","choices":[]}`))
	}))
	defer srv.Close()

	c := NewClient("key", srv.URL, "")
	if _, err := c.Complete(context.Background(), "hello", 0.8, 200); err == nil {
		t.Error("Expected error when no choices are returned")
	}
}

func TestComplete_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := NewClient("key", srv.URL, "")
	if _, err := c.Complete(context.Background(), "hello", 0.8, 200); err == nil {
		t.Error("Expected error on malformed body")
	}
}
