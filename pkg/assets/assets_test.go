package assets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestEmbeddedManifest(t *testing.T) {
	m, err := Embedded()
	if err != nil {
		t.Fatalf("Embedded failed: %v", err)
	}
	if m.Len() != 3 {
		t.Fatalf("expected 3 castles, got %d", m.Len())
	}

	r := NewResolver("", 0)
	for i, d := range m.Castles {
		if len(d.Textures) != 3 {
			t.Errorf("castle %d: expected 3 textures, got %d", i, len(d.Textures))
		}
		// Every embedded handle must resolve.
		for _, h := range append([]Handle{d.Model}, d.Textures...) {
			if _, err := r.Fetch(context.Background(), h); err != nil {
				t.Errorf("castle %d: fetch %s: %v", i, h, err)
			}
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    int
		wantErr bool
	}{
		{"empty document", "", 0, false},
		{"empty list", "castles: []", 0, false},
		{"one castle", "castles:\n  - model: a.glb\n    textures: [n.png, b.png, m.png]\n", 1, false},
		{"missing model", "castles:\n  - textures: [n.png]\n", 0, true},
		{"unknown key", "castle:\n  - model: a.glb\n", 0, true},
		{"not yaml", "castles: [", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse("test", []byte(tt.yaml))
			if tt.wantErr {
				var me *ManifestError
				if !errors.As(err, &me) {
					t.Fatalf("expected *ManifestError, got %v", err)
				}
				if me.Source != "test" {
					t.Errorf("Source = %q, want %q", me.Source, "test")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if m.Len() != tt.want {
				t.Errorf("Len() = %d, want %d", m.Len(), tt.want)
			}
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	var me *ManifestError
	if !errors.As(err, &me) {
		t.Fatalf("expected *ManifestError, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped ErrNotExist, got %v", err)
	}
}

func TestFSFetcher(t *testing.T) {
	f := FSFetcher{FS: fstest.MapFS{
		"castles/keep.glb": {Data: []byte("glb")},
	}}

	tests := []struct {
		handle  Handle
		want    string
		wantErr bool
	}{
		{"castles/keep.glb", "glb", false},
		{"embed:castles/keep.glb", "glb", false},
		{"/castles/keep.glb", "glb", false},
		{"castles/missing.glb", "", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.handle), func(t *testing.T) {
			data, err := f.Fetch(context.Background(), tt.handle)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if string(data) != tt.want {
				t.Errorf("data = %q, want %q", data, tt.want)
			}
		})
	}
}

func TestFSFetcherCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := FSFetcher{FS: fstest.MapFS{"a": {Data: []byte("x")}}}
	if _, err := f.Fetch(ctx, "a"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/keep.glb" {
			w.Write([]byte("remote"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := HTTPFetcher{Client: srv.Client()}
	data, err := f.Fetch(context.Background(), Handle(srv.URL+"/keep.glb"))
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(data) != "remote" {
		t.Errorf("data = %q, want %q", data, "remote")
	}

	if _, err := f.Fetch(context.Background(), Handle(srv.URL+"/missing")); err == nil {
		t.Error("expected error for 404")
	}
}

func TestResolverRoutes(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "local.png"), []byte("file"), 0644); err != nil {
		t.Fatal(err)
	}

	r := NewResolver(dir, 0)
	r.Embedded = FSFetcher{FS: fstest.MapFS{"keep.glb": {Data: []byte("embedded")}}}

	tests := []struct {
		handle  Handle
		want    string
		wantErr error
	}{
		{"embed:keep.glb", "embedded", nil},
		{"local.png", "file", nil},
		{Handle(filepath.Join(dir, "local.png")), "file", nil},
		{"ftp://example.com/a.png", "", ErrUnsupportedScheme},
		{"", "", ErrUnsupportedScheme},
	}

	for _, tt := range tests {
		t.Run(string(tt.handle), func(t *testing.T) {
			data, err := r.Fetch(context.Background(), tt.handle)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("data = %q, want %q", data, tt.want)
			}
		})
	}
}
