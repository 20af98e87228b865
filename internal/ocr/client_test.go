package ocr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_Recognize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.ImageURL != "https://example.com/invite.jpg" {
			t.Errorf("imageUrl = %q", req.ImageURL)
		}
		json.NewEncoder(w).Encode(Response{Text: "Emma's birth-\nday party on 4/I2"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	got, err := c.Recognize(context.Background(), Request{ImageURL: "https://example.com/invite.jpg"})
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	// Cleanup runs before the text is returned.
	if got != "Emma's birthday party on 4/12" {
		t.Errorf("got %q", got)
	}
}

func TestClient_EmptyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Response{Text: "   \n  "})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Recognize(context.Background(), Request{ImageURL: "https://example.com/blank.jpg"})
	if !errors.Is(err, ErrEmptyText) {
		t.Errorf("err = %v, want ErrEmptyText", err)
	}
}

func TestClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Recognize(context.Background(), Request{ImageURL: "https://example.com/x.jpg"})
	if err == nil {
		t.Fatal("expected error on 500")
	}
}

func TestClient_MissingImageURL(t *testing.T) {
	c := NewClient("http://unused")
	_, err := c.Recognize(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error on empty image URL")
	}
}
