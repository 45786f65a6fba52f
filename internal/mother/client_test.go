package mother_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cadenza/internal/mother"
	"cadenza/internal/prefs"
)

func newClient(t *testing.T, handler http.Handler) *mother.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := mother.New(server.URL, "aimi_user", 5*time.Second)
	if err != nil {
		t.Fatalf("mother.New: %v", err)
	}
	return client
}

func TestExperienceListSendsCredentials(t *testing.T) {
	var gotAuth, gotRole string
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRole = r.Header.Get("X-Aimi-Role")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"experiences": []map[string]any{
				{"id": 228, "title": "Deep Focus", "artist_id": 4},
			},
		})
	}))
	client.SetToken("jwt-token")

	list, err := client.ExperienceList(context.Background())
	if err != nil {
		t.Fatalf("ExperienceList failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != 228 || list[0].Title != "Deep Focus" {
		t.Fatalf("unexpected listing: %#v", list)
	}
	if gotAuth != "Bearer jwt-token" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
	if gotRole != "aimi_user" {
		t.Fatalf("expected role header, got %q", gotRole)
	}
}

func TestAuthDeniedPropagates(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		_, err := client.ArtistList(context.Background())
		if !errors.Is(err, mother.ErrAuthDenied) {
			t.Fatalf("status %d: expected ErrAuthDenied, got %v", status, err)
		}
	}
}

func TestExperienceMetadataRetainsRawBody(t *testing.T) {
	body := `{"id":228,"title":"Deep Focus","artist_id":4,"themes":[{"id":1,"name":"Dawn","size_bytes":2048}],"extra":"kept"}`
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/experiences/228" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))

	detail, err := client.ExperienceMetadata(context.Background(), 228)
	if err != nil {
		t.Fatalf("ExperienceMetadata failed: %v", err)
	}
	if detail.ID != 228 || len(detail.Themes) != 1 || detail.Themes[0].Name != "Dawn" {
		t.Fatalf("unexpected detail: %#v", detail)
	}
	var roundTrip map[string]any
	if err := json.Unmarshal(detail.Raw, &roundTrip); err != nil {
		t.Fatalf("raw body not valid JSON: %v", err)
	}
	if roundTrip["extra"] != "kept" {
		t.Fatal("raw body dropped fields the struct does not model")
	}
}

func TestPreferencesMissingUser(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	_, err := client.Preferences(context.Background(), "ghost")
	if !errors.Is(err, prefs.ErrNoSuchUser) {
		t.Fatalf("expected ErrNoSuchUser, got %v", err)
	}
}

func TestPutPreferencesUploadsDocument(t *testing.T) {
	var uploaded prefs.Tree
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&uploaded); err != nil {
			t.Errorf("decode upload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	doc := prefs.Tree{"volume": 0.8}
	if err := client.PutPreferences(context.Background(), "user-1", doc); err != nil {
		t.Fatalf("PutPreferences failed: %v", err)
	}
	if !prefs.Equal(doc, uploaded) {
		t.Fatalf("uploaded document mismatch: %#v", uploaded)
	}
}

func TestDirectLoginStoresToken(t *testing.T) {
	var sawToken string
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/login":
			var creds map[string]string
			_ = json.NewDecoder(r.Body).Decode(&creds)
			if creds["email"] != "ci@example.com" {
				t.Errorf("unexpected email %q", creds["email"])
			}
			_ = json.NewEncoder(w).Encode(mother.LoginResult{Token: "fresh-token", UserID: "user-9"})
		default:
			sawToken = r.Header.Get("Authorization")
			_ = json.NewEncoder(w).Encode(map[string]any{"artists": []any{}})
		}
	}))

	result, err := client.DirectLogin(context.Background(), "ci@example.com", "secret")
	if err != nil {
		t.Fatalf("DirectLogin failed: %v", err)
	}
	if result.UserID != "user-9" {
		t.Fatalf("unexpected login result: %#v", result)
	}

	if _, err := client.ArtistList(context.Background()); err != nil {
		t.Fatalf("ArtistList failed: %v", err)
	}
	if sawToken != "Bearer fresh-token" {
		t.Fatalf("expected login token on later requests, got %q", sawToken)
	}
}
