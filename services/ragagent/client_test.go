package ragagent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func completionBody(content string) string {
	resp := map[string]interface{}{
		"id":    "cmpl-1",
		"model": "agent",
		"choices": []map[string]interface{}{
			{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestAnswer(t *testing.T) {
	var gotAuth string
	var gotReq completionRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionBody("Keep a torch and a whistle in your kit.")))
	}))
	defer server.Close()

	client := NewClient(Config{DeploymentURL: server.URL + "/", AccessKey: "test-key"})

	answer, err := client.Answer(context.Background(), "what goes in an emergency kit")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if answer != "Keep a torch and a whistle in your kit." {
		t.Fatalf("unexpected answer: %q", answer)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("wrong auth header: %q", gotAuth)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Role != "user" {
		t.Fatalf("prompt not sent as a single user turn: %+v", gotReq.Messages)
	}
	if gotReq.Stream {
		t.Fatal("streaming must be disabled")
	}
}

func TestAnswerEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionBody("   ")))
	}))
	defer server.Close()

	client := NewClient(Config{DeploymentURL: server.URL})

	if _, err := client.Answer(context.Background(), "anything"); !errors.Is(err, ErrEmptyAnswer) {
		t.Fatalf("expected ErrEmptyAnswer, got %v", err)
	}
}

func TestAnswerNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(Config{DeploymentURL: server.URL})

	if _, err := client.Answer(context.Background(), "anything"); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestIsTimeoutError(t *testing.T) {
	if IsTimeoutError(nil) {
		t.Fatal("nil is not a timeout")
	}
	if !IsTimeoutError(errors.New("context deadline exceeded")) {
		t.Fatal("deadline exceeded should be a timeout")
	}
	if IsTimeoutError(errors.New("connection refused")) {
		t.Fatal("connection refused is not a timeout")
	}
}
