package content

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"

	domain "breakthebeat/internal/domain/content"
)

func minimalFS() fstest.MapFS {
	return fstest.MapFS{
		NavbarFile:   {Data: []byte(`{"logo":"BTB","links":[{"label":"Inicio","href":"/#"}],"rightLinks":[]}`)},
		FooterFile:   {Data: []byte(`{"brand":{"name":"BTB","description":"d"},"copyright":"c"}`)},
		ProjectsFile: {Data: []byte(`[{"id":"crew","name":"Crew","description":"x","image":"/i.jpg","participants":["Lu"]}]`)},
		ServicesFile: {Data: []byte(`{"sectionTitle":"Nuestros","items":[{"id":"dj","title":"DJ Set","description":"d","icon":"custom"}]}`)},
	}
}

// TestStore_LoadEmbedded verifies the compiled-in documents load and validate.
func TestStore_LoadEmbedded(t *testing.T) {
	s := NewStore(Embedded())
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	site := s.Site()
	if site.Navbar.Logo == "" || len(site.Projects) == 0 || len(site.Services.Items) == 0 {
		t.Errorf("embedded site incomplete: %+v", site)
	}
}

// TestStore_Load decodes each document into the site.
func TestStore_Load(t *testing.T) {
	s := NewStore(minimalFS())
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	site := s.Site()

	want := []domain.Project{{ID: "crew", Name: "Crew", Description: "x", Image: "/i.jpg", Participants: []string{"Lu"}}}
	if diff := cmp.Diff(want, site.Projects); diff != "" {
		t.Errorf("projects (-want +got):\n%s", diff)
	}
	if svc, err := site.ServiceByID("dj"); err != nil || svc.Title != "DJ Set" {
		t.Errorf("ServiceByID = %+v, %v", svc, err)
	}
}

// TestStore_LoadMissingDocument reports which file is missing.
func TestStore_LoadMissingDocument(t *testing.T) {
	fsys := minimalFS()
	delete(fsys, FooterFile)

	err := NewStore(fsys).Load(context.Background())
	if err == nil || !strings.Contains(err.Error(), FooterFile) {
		t.Fatalf("err = %v, want mention of %s", err, FooterFile)
	}
}

// TestStore_FailedLoadKeepsPrevious verifies a bad reload leaves the old site in place.
func TestStore_FailedLoadKeepsPrevious(t *testing.T) {
	fsys := minimalFS()
	s := NewStore(fsys)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	fsys[ProjectsFile] = &fstest.MapFile{Data: []byte(`[{"id":"a"},{"id":"a"}]`)}
	if err := s.Load(context.Background()); err == nil {
		t.Fatal("duplicate ids accepted")
	}
	if got := s.Site().Projects[0].ID; got != "crew" {
		t.Errorf("project id = %q, want previous content", got)
	}
}

// TestStore_Watch reloads after a file changes on disk.
func TestStore_Watch(t *testing.T) {
	dir := t.TempDir()
	for name, f := range minimalFS() {
		if err := os.WriteFile(filepath.Join(dir, name), f.Data, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	s := NewStore(os.DirFS(dir))
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx, dir, 20*time.Millisecond) }()
	defer func() {
		cancel()
		<-done
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	updated := `{"logo":"NUEVO","links":[],"rightLinks":[]}`
	if err := os.WriteFile(filepath.Join(dir, NavbarFile), []byte(updated), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if s.Site().Navbar.Logo == "NUEVO" {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("logo = %q after watch timeout", s.Site().Navbar.Logo)
}
