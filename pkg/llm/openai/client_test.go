package openai

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dskvich/snarky-facts/pkg/domain"
	"github.com/google/go-cmp/cmp"
)

func TestGenerateTrivia_TrimsFirstChoice(t *testing.T) {
	var got chatCompletionRequest
	var auth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":" Bats always turn left exiting a cave. "}}]}`))
	}))
	defer srv.Close()

	c, err := NewClient("secret", WithURL(srv.URL))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	trivia, err := c.GenerateTrivia(t.Context())
	if err != nil {
		t.Fatalf("GenerateTrivia: %v", err)
	}
	if trivia != "Bats always turn left exiting a cave." {
		t.Errorf("unexpected trivia %q", trivia)
	}

	if auth != "Bearer secret" {
		t.Errorf("unexpected Authorization header %q", auth)
	}

	want := chatCompletionRequest{
		Model:       domain.DefaultTextModel,
		Messages:    []chatCompletionMessage{{Role: "user", Content: domain.TriviaInstruction}},
		Temperature: domain.DefaultTemperature,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateTrivia_Options(t *testing.T) {
	var got chatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	c, _ := NewClient("k", WithURL(srv.URL), WithModel("gpt-4o-mini"), WithTemperature(1.2))
	if _, err := c.GenerateTrivia(t.Context()); err != nil {
		t.Fatalf("GenerateTrivia: %v", err)
	}
	if got.Model != "gpt-4o-mini" || got.Temperature != 1.2 {
		t.Errorf("options not applied: %+v", got)
	}
}

func TestGenerateTrivia_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":"bad key"}`, want: domain.ErrUnexpectedStatus},
		{name: "server error", status: http.StatusInternalServerError, body: "boom", want: domain.ErrUnexpectedStatus},
		{name: "not json", status: http.StatusOK, body: "<html>", want: domain.ErrMalformedResponse},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, want: domain.ErrMalformedResponse},
		{name: "blank content", status: http.StatusOK, body: `{"choices":[{"message":{"content":"  "}}]}`, want: domain.ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, _ := NewClient("k", WithURL(srv.URL))
			trivia, err := c.GenerateTrivia(t.Context())
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if trivia != "" {
				t.Errorf("expected empty trivia on failure, got %q", trivia)
			}
		})
	}
}

func TestGenerateTrivia_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, _ := NewClient("k", WithURL(url))
	if _, err := c.GenerateTrivia(t.Context()); !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestNewClient_RequiresToken(t *testing.T) {
	if _, err := NewClient(""); err == nil {
		t.Fatal("expected error for empty token")
	}
}
