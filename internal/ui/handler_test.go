package ui

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"physicstutor/internal/chat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResponder struct {
	reply   string
	calls   int
	message string
	history []chat.HistoryEntry
	params  chat.Params
}

func (s *stubResponder) Respond(ctx context.Context, message string, history []chat.HistoryEntry, params chat.Params) string {
	s.calls++
	s.message = message
	s.history = history
	s.params = params
	return s.reply
}

func newTestHandler(responder Responder) *Handler {
	return NewHandler(HandlerDeps{
		Responder: responder,
		Controls:  DefaultControls(""),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func postChat(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Chat(rr, req)
	return rr
}

func TestChatReturnsReply(t *testing.T) {
	responder := &stubResponder{reply: "KE = 9.0 J"}
	h := newTestHandler(responder)

	rr := postChat(t, h, `{"message":"What is the kinetic energy of a 2kg object moving at 3 m/s?","history":[{"user":"a","assistant":"b"}],"max_tokens":512,"temperature":0.5,"top_p":0.9}`)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp chatResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "KE = 9.0 J", resp.Reply)

	assert.Equal(t, 1, responder.calls)
	assert.Equal(t, "What is the kinetic energy of a 2kg object moving at 3 m/s?", responder.message)
	assert.Len(t, responder.history, 1)
	assert.Equal(t, chat.Params{MaxTokens: 512, Temperature: 0.5, TopP: 0.9}, responder.params)
}

func TestChatErrorReplyIsStill200(t *testing.T) {
	h := newTestHandler(&stubResponder{reply: "Error: timed out"})

	rr := postChat(t, h, `{"message":"hi"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"reply":"Error: timed out"}`, rr.Body.String())
}

func TestChatClampsSliders(t *testing.T) {
	responder := &stubResponder{reply: "ok"}
	h := newTestHandler(responder)

	rr := postChat(t, h, `{"message":"hi","max_tokens":99999,"temperature":0,"top_p":2}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, chat.Params{MaxTokens: 2048, Temperature: 0.1, TopP: 1.0}, responder.params)
}

func TestChatBadJSON(t *testing.T) {
	responder := &stubResponder{}
	h := newTestHandler(responder)

	rr := postChat(t, h, `{"message":`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "bad_request")
	assert.Zero(t, responder.calls)
}

func TestChatBodyTooLarge(t *testing.T) {
	responder := &stubResponder{reply: "ok"}
	h := NewHandler(HandlerDeps{
		Responder:    responder,
		Controls:     DefaultControls(""),
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		MaxBodyBytes: 64,
	})

	rr := postChat(t, h, `{"message":"`+strings.Repeat("a", 200)+`"}`)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Contains(t, rr.Body.String(), "request_too_large")
	assert.Zero(t, responder.calls)

	rr = postChat(t, h, `{"message":"short"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, responder.calls)
}

func TestChatEmptyMessage(t *testing.T) {
	responder := &stubResponder{}
	h := newTestHandler(responder)

	rr := postChat(t, h, `{"message":"   "}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "message_required")
	assert.Zero(t, responder.calls)
}

func TestPageRendersControls(t *testing.T) {
	h := newTestHandler(&stubResponder{})
	rr := httptest.NewRecorder()
	h.Page(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Physics Tutor")
	assert.Contains(t, body, `id="max_tokens" min="1" max="2048" step="1" value="512"`)
	assert.Contains(t, body, `id="temperature" min="0.1" max="4" step="0.1" value="0.5"`)
	assert.Contains(t, body, `id="top_p" min="0.1" max="1" step="0.05" value="0.9"`)
	assert.Contains(t, body, "strict physics problem solver")
}

func TestControlsJSON(t *testing.T) {
	h := newTestHandler(&stubResponder{})
	rr := httptest.NewRecorder()
	h.ControlsJSON(rr, httptest.NewRequest(http.MethodGet, "/api/controls", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var c Controls
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&c))
	assert.Equal(t, DefaultControls(""), c)
}
