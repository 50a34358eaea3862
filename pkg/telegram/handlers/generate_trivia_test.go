package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"sync"
	"testing"

	"github.com/dskvich/snarky-facts/pkg/domain"
	"github.com/dskvich/snarky-facts/pkg/logger"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/go-cmp/cmp"
)

type apiCall struct {
	Method   string
	Text     string
	Caption  string
	FileName string
}

// fakeAPI answers Bot API calls and records them in order.
type fakeAPI struct {
	mu    sync.Mutex
	calls []apiCall
	// failMethod, when set, is answered with a Bot API error.
	failMethod string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := path.Base(r.URL.Path)

	if method != "getMe" {
		call := apiCall{Method: method}
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			call.Text = r.FormValue("text")
			call.Caption = r.FormValue("caption")
			for _, field := range []string{"photo", "document"} {
				if file, header, err := r.FormFile(field); err == nil {
					io.Copy(io.Discard, file)
					file.Close()
					call.FileName = header.Filename
				}
			}
		}
		f.mu.Lock()
		f.calls = append(f.calls, call)
		f.mu.Unlock()
	}

	w.Header().Set("Content-Type", "application/json")
	if method == f.failMethod {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`)
		return
	}
	switch method {
	case "getMe":
		io.WriteString(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"facts"}}`)
	case "sendChatAction", "answerCallbackQuery":
		io.WriteString(w, `{"ok":true,"result":true}`)
	default:
		io.WriteString(w, `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"}}}`)
	}
}

func (f *fakeAPI) Calls() []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]apiCall(nil), f.calls...)
}

func newTestBot(t *testing.T) (*bot.Bot, *fakeAPI) {
	t.Helper()

	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	b, err := bot.New("123:test-token", bot.WithServerURL(srv.URL))
	if err != nil {
		t.Fatalf("creating bot: %v", err)
	}
	return b, api
}

type fakeGenerator struct {
	card *domain.Card
	err  error
}

func (g *fakeGenerator) Run(_ context.Context, onState func(domain.State)) (*domain.Card, error) {
	onState(domain.StateAwaitingTrivia)
	if g.err != nil {
		onState(domain.StateIdle)
		return nil, &domain.StageError{Stage: domain.StateAwaitingTrivia, Err: g.err}
	}
	onState(domain.StateAwaitingImage)
	onState(domain.StateRendered)
	return g.card, nil
}

func testCard() *domain.Card {
	const trivia = "Octopuses have three hearts and still manage to be heartless."
	img := []byte("\x89PNG fake")
	return &domain.Card{
		Trivia: trivia,
		Image:  img,
		Downloads: []domain.Download{
			{Label: "Download Image", FileName: domain.ImageFileName, MimeType: domain.ImageMimeType, Data: img},
			{Label: "Download Text", FileName: domain.TextFileName, MimeType: domain.TextMimeType, Data: []byte(trivia)},
		},
	}
}

func commandUpdate() *models.Update {
	return &models.Update{
		Message: &models.Message{
			ID:   10,
			Text: "/trivia",
			Chat: models.Chat{ID: 42},
		},
	}
}

func TestGenerateTrivia_SendsCardAndDownloads(t *testing.T) {
	b, api := newTestBot(t)
	card := testCard()

	GenerateTrivia(&fakeGenerator{card: card})(t.Context(), b, commandUpdate())

	want := []apiCall{
		{Method: "sendChatAction"},
		{Method: "sendChatAction"},
		{Method: "sendPhoto", Caption: card.Trivia, FileName: domain.ImageFileName},
		{Method: "sendDocument", FileName: domain.ImageFileName},
		{Method: "sendDocument", FileName: domain.TextFileName},
	}
	if diff := cmp.Diff(want, api.Calls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateTrivia_ReportsSingleError(t *testing.T) {
	b, api := newTestBot(t)

	GenerateTrivia(&fakeGenerator{err: errors.New("boom")})(t.Context(), b, commandUpdate())

	calls := api.Calls()
	var messages []apiCall
	for _, c := range calls {
		if c.Method == "sendPhoto" || c.Method == "sendDocument" {
			t.Fatalf("unexpected %s after a failed cycle", c.Method)
		}
		if c.Method == "sendMessage" {
			messages = append(messages, c)
		}
	}

	if len(messages) != 1 {
		t.Fatalf("expected exactly one message, got %d", len(messages))
	}
	if !strings.HasPrefix(messages[0].Text, "❌ Trivia generation failed") {
		t.Errorf("unexpected error text %q", messages[0].Text)
	}
}

func TestGenerateTrivia_AnswersCallback(t *testing.T) {
	b, api := newTestBot(t)

	update := &models.Update{
		CallbackQuery: &models.CallbackQuery{
			ID:   "cb-1",
			Data: domain.GenerateCallbackData,
			Message: models.MaybeInaccessibleMessage{
				Message: &models.Message{ID: 11, Chat: models.Chat{ID: 42}},
			},
		},
	}

	GenerateTrivia(&fakeGenerator{card: testCard()})(t.Context(), b, update)

	calls := api.Calls()
	if len(calls) == 0 || calls[0].Method != "answerCallbackQuery" {
		t.Fatalf("expected the callback to be answered first, got %+v", calls)
	}
	if calls[len(calls)-1].Method != "sendDocument" {
		t.Errorf("expected the cycle to finish with downloads, got %+v", calls)
	}
}

func TestStart_OffersGenerateButton(t *testing.T) {
	b, api := newTestBot(t)

	Start()(t.Context(), b, &models.Update{Message: &models.Message{Text: "/start", Chat: models.Chat{ID: 42}}})

	calls := api.Calls()
	if len(calls) != 1 || calls[0].Method != "sendMessage" {
		t.Fatalf("expected one message, got %+v", calls)
	}
	if !strings.Contains(calls[0].Text, "Snarky Facts Generator") {
		t.Errorf("unexpected welcome text %q", calls[0].Text)
	}
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(logger.NewHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestGenerateTrivia_LogsUndeliveredError(t *testing.T) {
	b, api := newTestBot(t)
	api.failMethod = "sendMessage"
	logs := captureLogs(t)

	GenerateTrivia(&fakeGenerator{err: errors.New("boom")})(t.Context(), b, commandUpdate())

	if !strings.Contains(logs.String(), "sending error message") {
		t.Errorf("undelivered error message was not logged:\n%s", logs.String())
	}
}

func TestStart_LogsUndeliveredWelcome(t *testing.T) {
	b, api := newTestBot(t)
	api.failMethod = "sendMessage"
	logs := captureLogs(t)

	Start()(t.Context(), b, commandUpdate())

	if !strings.Contains(logs.String(), "sending welcome message") {
		t.Errorf("undelivered welcome was not logged:\n%s", logs.String())
	}
}
