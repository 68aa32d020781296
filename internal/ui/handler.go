package ui

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"physicstutor/internal/chat"
	"physicstutor/internal/httpserver"
	"physicstutor/internal/middleware"
)

//go:embed templates/index.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

// Responder то, что нужно обработчику от адаптера реплик.
type Responder interface {
	Respond(ctx context.Context, message string, history []chat.HistoryEntry, params chat.Params) string
}

// ChatRequest тело POST /api/chat. Числовые поля необязательны.
type ChatRequest struct {
	Message       string              `json:"message"`
	History       []chat.HistoryEntry `json:"history"`
	SystemMessage string              `json:"system_message"`
	MaxTokens     *int                `json:"max_tokens"`
	Temperature   *float64            `json:"temperature"`
	TopP          *float64            `json:"top_p"`
}

// DefaultMaxBodyBytes предел тела POST /api/chat.
const DefaultMaxBodyBytes int64 = 1 << 20

type chatResponse struct {
	Reply string `json:"reply"`
}

type HandlerDeps struct {
	Responder    Responder
	Controls     Controls
	Title        string
	Logger       *slog.Logger
	// MaxBodyBytes ноль означает DefaultMaxBodyBytes.
	MaxBodyBytes int64
}

type Handler struct {
	responder Responder
	controls  Controls
	title     string
	logger    *slog.Logger
	maxBody   int64
}

func NewHandler(deps HandlerDeps) *Handler {
	title := deps.Title
	if title == "" {
		title = "Physics Tutor"
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxBody := deps.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	return &Handler{
		responder: deps.Responder,
		controls:  deps.Controls,
		title:     title,
		logger:    logger,
		maxBody:   maxBody,
	}
}

type pageData struct {
	Title    string
	Controls Controls
}

// Page отдаёт HTML страницу чата.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, pageData{Title: h.title, Controls: h.controls}); err != nil {
		h.logger.Error("render page failed", slog.String("error", err.Error()))
	}
}

// ControlsJSON отдаёт описание элементов управления.
func (h *Handler) ControlsJSON(w http.ResponseWriter, r *http.Request) {
	httpserver.WriteJSON(w, http.StatusOK, h.controls)
}

// Chat обрабатывает одну реплику. Ответ всегда 200: ошибки модели уже
// превращены адаптером в текст "Error: ...".
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	body := http.MaxBytesReader(w, r.Body, h.maxBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpserver.WriteJSONError(w, http.StatusRequestEntityTooLarge, "request_too_large", "chat request is too large")
			return
		}
		httpserver.WriteJSONError(w, http.StatusBadRequest, "bad_request", "cannot parse chat request")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		httpserver.WriteJSONError(w, http.StatusBadRequest, "message_required", "message must not be empty")
		return
	}

	params := h.controls.Apply(req)
	h.logger.Debug("chat turn",
		slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
		slog.Int("message_len", len(req.Message)),
		slog.Int("history_len", len(req.History)),
		slog.Int("max_tokens", params.MaxTokens),
		slog.Float64("temperature", params.Temperature),
		slog.Float64("top_p", params.TopP),
	)
	reply := h.responder.Respond(r.Context(), req.Message, req.History, params)
	httpserver.WriteJSON(w, http.StatusOK, chatResponse{Reply: reply})
}
