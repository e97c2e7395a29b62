package wordpress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dfryer1193/tusitala/blog/domain"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{BaseURL: server.URL, Username: "editor", AppPassword: "app pass"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return client
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "valid", cfg: Config{BaseURL: "https://blog.example.com/"}},
		{name: "missing base url", cfg: Config{}, wantErr: true},
		{name: "unsupported scheme", cfg: Config{BaseURL: "ftp://blog.example.com"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			if client.BaseURL() != "https://blog.example.com" {
				t.Errorf("BaseURL = %q, want trailing slash trimmed", client.BaseURL())
			}
			if client.http.Timeout != defaultHTTPTimeout {
				t.Errorf("Timeout = %v, want %v", client.http.Timeout, defaultHTTPTimeout)
			}
		})
	}
}

func TestClient_PostURL(t *testing.T) {
	client, err := New(Config{BaseURL: "https://blog.example.com"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if got, want := client.PostURL(42), "https://blog.example.com/?p=42"; got != want {
		t.Errorf("PostURL = %q, want %q", got, want)
	}
}

func TestClient_TestConnection(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   bool
	}{
		{name: "ok", status: http.StatusOK, want: true},
		{name: "unauthorized", status: http.StatusUnauthorized, want: false},
		{name: "server error", status: http.StatusInternalServerError, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/wp-json/wp/v2/posts" || r.URL.Query().Get("per_page") != "1" {
					t.Errorf("unexpected request %s", r.URL.String())
				}
				w.WriteHeader(tt.status)
				fmt.Fprint(w, "[]")
			}))

			if got := client.TestConnection(context.Background()); got != tt.want {
				t.Errorf("TestConnection = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClient_TestConnection_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client, err := New(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if client.TestConnection(context.Background()) {
		t.Error("expected TestConnection to report false for an unreachable host")
	}
}

func TestClient_BasicAuth(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "editor" || pass != "app pass" {
			t.Errorf("BasicAuth = (%q, %q, %v)", user, pass, ok)
		}
		fmt.Fprint(w, "[]")
	}))

	if _, err := client.GetCategories(context.Background()); err != nil {
		t.Fatalf("GetCategories failed: %v", err)
	}
}

func TestClient_CreatePost_Payload(t *testing.T) {
	scheduled := time.Date(2030, 1, 2, 15, 4, 5, 0, time.UTC)

	tests := []struct {
		name        string
		input       *domain.RemotePostInput
		wantKeys    []string
		missingKeys []string
	}{
		{
			name:        "minimal",
			input:       &domain.RemotePostInput{Title: "T", Content: "<p>c</p>", Status: domain.StatusDraft},
			wantKeys:    []string{"title", "content", "status"},
			missingKeys: []string{"excerpt", "slug", "meta", "date", "featured_media", "categories", "tags"},
		},
		{
			name: "full",
			input: &domain.RemotePostInput{
				Title:           "T",
				Content:         "<p>c</p>",
				Status:          domain.StatusFuture,
				CategoryIDs:     []int{3},
				TagIDs:          []int{5, 6},
				FeaturedMediaID: 9,
				Excerpt:         "short",
				Slug:            "t",
				Meta:            map[string]string{"description": "d"},
				Date:            &scheduled,
			},
			wantKeys: []string{"title", "content", "status", "categories", "tags", "featured_media", "excerpt", "slug", "meta", "date"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]any
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/wp-json/wp/v2/posts" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					t.Errorf("failed to decode body: %v", err)
				}
				w.WriteHeader(http.StatusCreated)
				fmt.Fprint(w, `{"id":42,"title":{"rendered":"T"},"status":"draft","link":"https://blog.example.com/t"}`)
			}))

			post, err := client.CreatePost(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("CreatePost failed: %v", err)
			}
			if post.ID != 42 || post.Title != "T" || post.Link != "https://blog.example.com/t" {
				t.Errorf("unexpected post: %+v", post)
			}

			for _, k := range tt.wantKeys {
				if _, ok := body[k]; !ok {
					t.Errorf("expected key %q in payload", k)
				}
			}
			for _, k := range tt.missingKeys {
				if _, ok := body[k]; ok {
					t.Errorf("expected key %q to be omitted, got %v", k, body[k])
				}
			}

			title, _ := body["title"].(map[string]any)
			if title["raw"] != "T" {
				t.Errorf("title = %v, want raw envelope", body["title"])
			}
			if tt.input.Date != nil && body["date"] != "2030-01-02T15:04:05Z" {
				t.Errorf("date = %v, want RFC 3339", body["date"])
			}
		})
	}
}

func TestClient_CreatePost_Error(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"code":"rest_cannot_create","message":"Sorry"}`)
	}))

	_, err := client.CreatePost(context.Background(), &domain.RemotePostInput{Title: "T", Content: "c"})

	var apiErr *domain.RemoteAPIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *RemoteAPIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want 403", apiErr.StatusCode)
	}
	if apiErr.Code != "rest_cannot_create" {
		t.Errorf("Code = %q, want rest_cannot_create", apiErr.Code)
	}
	if !strings.Contains(err.Error(), "create post failed with status 403") {
		t.Errorf("unexpected error text: %v", err)
	}
}

func TestClient_UploadMedia(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wp-json/wp/v2/media" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("failed to parse multipart form: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if got := r.FormValue("title"); got != "cat.png" {
			t.Errorf("title = %q, want filename fallback", got)
		}
		if got := r.FormValue("alt_text"); got != "a cat" {
			t.Errorf("alt_text = %q", got)
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing file part: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		content, _ := io.ReadAll(file)
		if string(content) != "PNGDATA" || header.Filename != "cat.png" {
			t.Errorf("file part = %q (%s)", content, header.Filename)
		}
		if header.Header.Get("Content-Type") != "image/png" {
			t.Errorf("file content type = %q", header.Header.Get("Content-Type"))
		}

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":77,"source_url":"https://blog.example.com/wp-content/uploads/cat.png","title":{"rendered":"cat"}}`)
	}))

	media, err := client.UploadMedia(context.Background(), domain.MediaUpload{
		Content:  []byte("PNGDATA"),
		Filename: "cat.png",
		MimeType: "image/png",
		AltText:  "a cat",
	})
	if err != nil {
		t.Fatalf("UploadMedia failed: %v", err)
	}
	if media.ID != 77 || media.URL != "https://blog.example.com/wp-content/uploads/cat.png" || media.Title != "cat" {
		t.Errorf("unexpected media: %+v", media)
	}
}

func TestClient_UploadMedia_Error(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		fmt.Fprint(w, "too big")
	}))

	_, err := client.UploadMedia(context.Background(), domain.MediaUpload{Content: []byte("x"), Filename: "x.png"})

	var apiErr *domain.RemoteAPIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *RemoteAPIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusRequestEntityTooLarge || apiErr.Body != "too big" {
		t.Errorf("unexpected error: %+v", apiErr)
	}
	if apiErr.Code != "" {
		t.Errorf("Code = %q, want empty for a non-JSON body", apiErr.Code)
	}
}

func TestClient_GetMediaLibrary(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("page") != "1" || q.Get("per_page") != "20" || q.Get("orderby") != "date" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		fmt.Fprint(w, `[{"id":1,"source_url":"https://x/a.png","title":{"rendered":"a"},"alt_text":"alt","caption":{"rendered":"<p>cap</p>"},"mime_type":"image/png"}]`)
	}))

	items, err := client.GetMediaLibrary(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("GetMediaLibrary failed: %v", err)
	}
	if len(items) != 1 || items[0].URL != "https://x/a.png" || items[0].AltText != "alt" {
		t.Errorf("unexpected items: %+v", items)
	}
}

func TestClient_GetPosts(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("per_page"); got != "10" {
			t.Errorf("per_page = %q, want 10", got)
		}
		if r.URL.Query().Has("status") {
			t.Error("expected empty status to be omitted")
		}
		fmt.Fprint(w, `[{"id":1,"title":{"rendered":"One"},"status":"publish","date":"2024-01-01T00:00:00"}]`)
	}))

	posts, err := client.GetPosts(context.Background(), PostListOptions{PerPage: 10})
	if err != nil {
		t.Fatalf("GetPosts failed: %v", err)
	}
	if len(posts) != 1 || posts[0].Title != "One" || posts[0].Status != domain.StatusPublish {
		t.Errorf("unexpected posts: %+v", posts)
	}
}

// fakeTagServer serves the tags endpoints from an in-memory list.
type fakeTagServer struct {
	mu       sync.Mutex
	tags     []termResponse
	nextID   int
	created  []string
	failFor  map[string]bool
	existsAs map[string]int
	listErr  bool
}

func (f *fakeTagServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.URL.Path != "/wp-json/wp/v2/tags" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		if f.listErr {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"code":"internal"}`)
			return
		}
		json.NewEncoder(w).Encode(f.tags)
	case http.MethodPost:
		var payload termPayload
		json.NewDecoder(r.Body).Decode(&payload)
		f.created = append(f.created, payload.Name)

		if f.failFor[payload.Name] {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"code":"db_error"}`)
			return
		}
		if id, ok := f.existsAs[payload.Name]; ok {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, `{"code":"term_exists","message":"A term with the name provided already exists.","data":{"status":400,"term_id":%d}}`, id)
			return
		}

		f.nextID++
		tag := termResponse{ID: f.nextID, Name: payload.Name, Slug: payload.Slug}
		f.tags = append(f.tags, tag)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(tag)
	}
}

func TestClient_GetOrCreateTags(t *testing.T) {
	tests := []struct {
		name        string
		server      *fakeTagServer
		input       []string
		want        []int
		wantCreated []string
		wantErr     bool
	}{
		{
			name:   "empty input makes no calls",
			server: &fakeTagServer{listErr: true},
			input:  nil,
			want:   []int{},
		},
		{
			name:        "case-insensitive de-dup",
			server:      &fakeTagServer{nextID: 100},
			input:       []string{"a", "A", "b"},
			want:        []int{101, 102},
			wantCreated: []string{"a", "b"},
		},
		{
			name:   "existing tags match case-insensitively",
			server: &fakeTagServer{tags: []termResponse{{ID: 5, Name: "Go"}, {ID: 6, Name: "Testing"}}},
			input:  []string{"go", "TESTING"},
			want:   []int{5, 6},
		},
		{
			name:        "failed creation is skipped",
			server:      &fakeTagServer{nextID: 10, failFor: map[string]bool{"bad": true}},
			input:       []string{"first", "bad", "last"},
			want:        []int{11, 12},
			wantCreated: []string{"first", "bad", "last"},
		},
		{
			name:        "term_exists resolves to the existing id",
			server:      &fakeTagServer{existsAs: map[string]int{"hidden": 33}},
			input:       []string{"hidden"},
			want:        []int{33},
			wantCreated: []string{"hidden"},
		},
		{
			name:    "listing failure is returned",
			server:  &fakeTagServer{listErr: true},
			input:   []string{"x"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.server)

			got, err := client.GetOrCreateTags(context.Background(), tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("GetOrCreateTags failed: %v", err)
			}

			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("ids = %v, want %v", got, tt.want)
			}
			if fmt.Sprint(tt.server.created) != fmt.Sprint(tt.wantCreated) {
				t.Errorf("created = %v, want %v", tt.server.created, tt.wantCreated)
			}
		})
	}
}

func TestClient_GetOrCreateTagTerms_KeepsRequestedName(t *testing.T) {
	server := &fakeTagServer{tags: []termResponse{{ID: 5, Name: "Go", Slug: "go"}}}
	client := newTestClient(t, server)

	terms, err := client.GetOrCreateTagTerms(context.Background(), []string{"  go  ", "New Tag"})
	if err != nil {
		t.Fatalf("GetOrCreateTagTerms failed: %v", err)
	}
	if len(terms) != 2 {
		t.Fatalf("expected 2 terms, got %d", len(terms))
	}
	if terms[0].ID != 5 || terms[0].Name != "go" {
		t.Errorf("terms[0] = %+v", terms[0])
	}
	if terms[1].Name != "New Tag" || terms[1].Slug != "new-tag" {
		t.Errorf("terms[1] = %+v", terms[1])
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Go", want: "go"},
		{in: "New Tag", want: "new-tag"},
		{in: "C++ & Rust!", want: "c-rust-"},
		{in: "already-slugged", want: "already-slugged"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Slugify(tt.in); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
