package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"testing/iotest"
)

func TestDiskStorage_UploadAndList(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDiskStorage(dir, "/files/")
	if err != nil {
		t.Fatalf("NewDiskStorage: %v", err)
	}
	ctx := context.Background()

	for _, key := range []string{"b.mp4", "a.png"} {
		if err := s.Upload(ctx, key, strings.NewReader("data-"+key), -1, "application/octet-stream"); err != nil {
			t.Fatalf("Upload(%q): %v", key, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}

	objects, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	var got []string
	for _, o := range objects {
		got = append(got, o.Name)
	}
	slices.Sort(got)
	if !slices.Equal(got, []string{"a.png", "b.mp4"}) {
		t.Errorf("unexpected listing %v", got)
	}

	data, err := os.ReadFile(filepath.Join(dir, "a.png"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "data-a.png" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestDiskStorage_RejectsPathKeys(t *testing.T) {
	s, err := NewDiskStorage(t.TempDir(), "/files")
	if err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"", "..", "../escape.png", "dir/file.png", `dir\file.png`} {
		if err := s.Upload(context.Background(), key, strings.NewReader("x"), 1, ""); err == nil {
			t.Errorf("expected error for key %q", key)
		}
	}
}

func TestDiskStorage_FailedWriteLeavesNoObject(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDiskStorage(dir, "/files")
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	broken := io.MultiReader(strings.NewReader("partial"), iotest.ErrReader(errors.New("connection reset")))
	if err := s.Upload(ctx, "torn.png", broken, -1, "image/png"); err == nil {
		t.Fatal("expected Upload to fail when the reader fails")
	}

	if _, err := os.Stat(filepath.Join(dir, "torn.png")); !os.IsNotExist(err) {
		t.Errorf("expected partial file removed, stat error: %v", err)
	}
	objects, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(objects) != 0 {
		t.Errorf("expected empty listing, got %v", objects)
	}
}

func TestDiskStorage_CancelledContext(t *testing.T) {
	s, err := NewDiskStorage(t.TempDir(), "/files")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.List(ctx); err == nil {
		t.Error("expected List to fail on cancelled context")
	}
	if err := s.Upload(ctx, "a.png", strings.NewReader("x"), 1, ""); err == nil {
		t.Error("expected Upload to fail on cancelled context")
	}
}

func TestPublicURLs(t *testing.T) {
	disk, err := NewDiskStorage(t.TempDir(), "/files/")
	if err != nil {
		t.Fatal(err)
	}
	if got := disk.PublicURL("my meme.png"); got != "/files/my%20meme.png" {
		t.Errorf("disk url: got %q", got)
	}

	m := &MinioStorage{publicBase: "http://localhost:9000/memes"}
	if got := m.PublicURL("a.png"); got != "http://localhost:9000/memes/a.png" {
		t.Errorf("minio url: got %q", got)
	}

	g := &GCSStorage{publicBase: gcsPublicHost + "/bucket"}
	if got := g.PublicURL("a.png"); got != "https://storage.googleapis.com/bucket/a.png" {
		t.Errorf("gcs url: got %q", got)
	}
}

func TestPublicReadPolicy(t *testing.T) {
	var policy struct {
		Statement []struct {
			Action   string `json:"Action"`
			Resource string `json:"Resource"`
		} `json:"Statement"`
	}
	if err := json.Unmarshal([]byte(publicReadPolicy("memes")), &policy); err != nil {
		t.Fatalf("policy is not valid JSON: %v", err)
	}
	if len(policy.Statement) != 1 {
		t.Fatalf("expected one statement, got %d", len(policy.Statement))
	}
	if policy.Statement[0].Action != "s3:GetObject" {
		t.Errorf("unexpected action %q", policy.Statement[0].Action)
	}
	if policy.Statement[0].Resource != "arn:aws:s3:::memes/*" {
		t.Errorf("unexpected resource %q", policy.Statement[0].Resource)
	}
}
