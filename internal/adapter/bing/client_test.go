package bing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"memebot/internal/usecase/search"
)

func TestSearchSendsParamsAndParsesResults(t *testing.T) {
	var gotPath, gotKey, gotClientID string
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("Ocp-Apim-Subscription-Key")
		gotClientID = r.Header.Get("X-MSEdge-ClientID")
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"nextOffset": 7,
			"value": [
				{"name": "cat", "contentUrl": "http://img/1.jpg", "width": 640, "height": 480},
				{"name": "broken", "contentUrl": ""},
				{"name": "dog", "contentUrl": "http://img/2.png", "width": 100, "height": 90}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", time.Second, 0)
	page, err := c.Search(context.Background(), search.Query{
		Text:       "grumpy cat",
		Market:     "en-US",
		Count:      5,
		Offset:     2,
		SafeSearch: "Moderate",
		MinWidth:   120,
		MinHeight:  120,
		MaxWidth:   1024,
		MaxHeight:  1024,
		ClientID:   "client-1",
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if gotPath != "/v7.0/images/search" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotKey != "secret" || gotClientID != "client-1" {
		t.Fatalf("missing headers: key=%q client=%q", gotKey, gotClientID)
	}
	want := map[string]string{
		"q": "grumpy cat", "mkt": "en-US", "count": "5", "offset": "2",
		"safeSearch": "Moderate", "minWidth": "120", "minHeight": "120",
		"maxWidth": "1024", "maxHeight": "1024",
	}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Fatalf("param %s: expected %q, got %q", k, v, gotQuery[k])
		}
	}

	if len(page.Results) != 2 || page.NextOffset != 7 {
		t.Fatalf("unexpected page %+v", page)
	}
	if page.Results[0].URL != "http://img/1.jpg" || page.Results[1].Name != "dog" {
		t.Fatalf("unexpected results %+v", page.Results)
	}
}

func TestSearchReportsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"code": "401", "message": "Access denied due to invalid subscription key."}}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL+"/", "bad", time.Second, 0).Search(context.Background(), search.Query{Text: "x"})
	if err == nil || !strings.Contains(err.Error(), "invalid subscription key") {
		t.Fatalf("expected api error message, got %v", err)
	}
}

func TestSearchReportsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "k", time.Second, 0).Search(context.Background(), search.Query{Text: "x"})
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte("0123456789"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", time.Second, 10)
	data, err := c.Download(context.Background(), srv.URL+"/ok")
	if err != nil || string(data) != "0123456789" {
		t.Fatalf("unexpected download %q, %v", data, err)
	}

	if _, err := c.Download(context.Background(), srv.URL+"/missing"); err == nil {
		t.Fatalf("expected error for 404")
	}

	small := NewClient(srv.URL, "k", time.Second, 5)
	if _, err := small.Download(context.Background(), srv.URL+"/ok"); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}
