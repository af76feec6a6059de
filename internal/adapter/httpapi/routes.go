package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"memebot/internal/domain"
)

// RegisterRoutes exposes read-only views of the chat sessions.
func RegisterRoutes(store domain.SessionStore) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h := &handler{store: store}

	r.Get("/healthz", h.health)
	r.Get("/api/sessions", h.listSessions)
	r.Get("/api/sessions/{chatID}/image", h.sessionImage)

	return r
}

type handler struct {
	store domain.SessionStore
}

type sessionView struct {
	ChatID    int64      `json:"chatId"`
	Query     string     `json:"query,omitempty"`
	Results   int        `json:"results"`
	HasImage  bool       `json:"hasImage"`
	Edited    bool       `json:"edited"`
	Format    formatView `json:"format"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type formatView struct {
	TopText         string  `json:"topText"`
	BottomText      string  `json:"bottomText"`
	Alignment       string  `json:"alignment"`
	Font            string  `json:"font"`
	FontSize        int     `json:"fontSize"`
	TextColor       string  `json:"textColor"`
	OutlineColor    string  `json:"outlineColor"`
	OutlineSize     int     `json:"outlineSize"`
	Whitespace      string  `json:"whitespace"`
	WhitespaceRatio float64 `json:"whitespaceRatio"`
}

func toView(s domain.Session) sessionView {
	f := s.Format
	return sessionView{
		ChatID:   s.ChatID,
		Query:    s.Query,
		Results:  len(s.Results),
		HasImage: s.Original != nil,
		Edited:   s.Edited != nil,
		Format: formatView{
			TopText:         f.TopText,
			BottomText:      f.BottomText,
			Alignment:       string(f.Alignment),
			Font:            f.Font,
			FontSize:        f.FontSize,
			TextColor:       f.TextColor,
			OutlineColor:    f.OutlineColor,
			OutlineSize:     f.OutlineSize,
			Whitespace:      f.Whitespace.String(),
			WhitespaceRatio: f.WhitespaceRatio,
		},
		UpdatedAt: s.UpdatedAt,
	}
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (h *handler) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.store.List()
	views := make([]sessionView, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, toView(s))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *handler) sessionImage(w http.ResponseWriter, r *http.Request) {
	chatID, err := strconv.ParseInt(chi.URLParam(r, "chatID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid chat id", http.StatusBadRequest)
		return
	}
	s, ok := h.store.Snapshot(chatID)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	var data []byte
	switch r.URL.Query().Get("variant") {
	case "original":
		data = s.Original
	case "", "new":
		data = s.Current()
	default:
		http.Error(w, "variant must be original or new", http.StatusBadRequest)
		return
	}
	if data == nil {
		http.Error(w, "no image", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
