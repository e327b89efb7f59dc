package service

import (
	"bytes"
	"image"
	"image/png"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// multipartImage builds a multipart request carrying a generated PNG.
func multipartImage(t *testing.T, filename string, payload []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("image", filename)
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err := fw.Write(payload); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	_ = w.Close()

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatalf("parsing multipart form: %v", err)
	}
	file, header, err := req.FormFile("image")
	if err != nil {
		t.Fatalf("reading form file: %v", err)
	}
	return file, header
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

func TestSaveImage_StoresAndRemoves(t *testing.T) {
	s, err := NewUploadService(t.TempDir())
	if err != nil {
		t.Fatalf("NewUploadService error: %v", err)
	}

	file, header := multipartImage(t, "poster.png", pngBytes(t))
	ref, err := s.SaveImage(file, header)
	if err != nil {
		t.Fatalf("SaveImage error: %v", err)
	}
	if !strings.HasPrefix(ref, "events"+string(filepath.Separator)) || !strings.HasSuffix(ref, ".png") {
		t.Errorf("unexpected reference %q", ref)
	}

	full := filepath.Join(s.Dir(), ref)
	if _, err := os.Stat(full); err != nil {
		t.Fatalf("stored image missing: %v", err)
	}
	thumb := filepath.Join(s.Dir(), "events", "thumb_"+filepath.Base(ref))
	if _, err := os.Stat(thumb); err != nil {
		t.Fatalf("thumbnail missing: %v", err)
	}

	if err := s.Remove(ref); err != nil {
		t.Fatalf("Remove error: %v", err)
	}
	if _, err := os.Stat(full); !os.IsNotExist(err) {
		t.Error("image not removed")
	}
	if _, err := os.Stat(thumb); !os.IsNotExist(err) {
		t.Error("thumbnail not removed")
	}
}

func TestSaveImage_RejectsNonImageExtension(t *testing.T) {
	s, err := NewUploadService(t.TempDir())
	if err != nil {
		t.Fatalf("NewUploadService error: %v", err)
	}

	file, header := multipartImage(t, "malware.exe", []byte("MZ"))
	if _, err := s.SaveImage(file, header); err == nil {
		t.Fatal("non-image extension should be rejected")
	}
}

func TestSaveImage_RejectsImposterPayload(t *testing.T) {
	s, err := NewUploadService(t.TempDir())
	if err != nil {
		t.Fatalf("NewUploadService error: %v", err)
	}

	// Right extension, wrong bytes: decode must fail.
	file, header := multipartImage(t, "fake.png", []byte("<script>alert(1)</script>"))
	if _, err := s.SaveImage(file, header); err == nil {
		t.Fatal("payload that does not decode as an image should be rejected")
	}
}

func TestRemove_RejectsPathTraversal(t *testing.T) {
	s, err := NewUploadService(t.TempDir())
	if err != nil {
		t.Fatalf("NewUploadService error: %v", err)
	}

	if err := s.Remove("../etc/passwd"); err == nil {
		t.Fatal("traversal reference should be rejected")
	}
	if err := s.Remove("/etc/passwd"); err == nil {
		t.Fatal("absolute reference should be rejected")
	}
}

func TestRemove_MissingFileIsNotError(t *testing.T) {
	s, err := NewUploadService(t.TempDir())
	if err != nil {
		t.Fatalf("NewUploadService error: %v", err)
	}

	if err := s.Remove("events/never-existed.jpg"); err != nil {
		t.Fatalf("removing a missing file should be a no-op, got %v", err)
	}
}
