package extractor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/lattice-data/ingestor/internal/content"
)

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTextExtractor(t *testing.T) {
	path := writeTemp(t, "notes.txt", "hello world")
	e := &TextExtractor{}
	c, err := e.Extract(context.Background(), FileInfo{Path: path, Name: "notes.txt"})
	if err != nil {
		t.Fatal(err)
	}
	if c.Kind != content.KindText || c.Text != "hello world" {
		t.Fatalf("unexpected result: %+v", c)
	}
}

func TestCSVExtractor(t *testing.T) {
	path := writeTemp(t, "data.csv", "a,b\n1,2\n3,4\n")
	e := &CSVExtractor{}
	c, err := e.Extract(context.Background(), FileInfo{Path: path, Name: "data.csv"})
	if err != nil {
		t.Fatal(err)
	}
	if c.Kind != content.KindTables || len(c.Tables) != 1 || len(c.Tables[0].Rows) != 3 {
		t.Fatalf("unexpected result: %+v", c)
	}
}

func TestHTMLExtractor_StripsTags(t *testing.T) {
	path := writeTemp(t, "page.html", "<html><body><p>Hello</p><script>ignored()</script></body></html>")
	e := &HTMLExtractor{}
	c, err := e.Extract(context.Background(), FileInfo{Path: path, Name: "page.html"})
	if err != nil {
		t.Fatal(err)
	}
	if c.Text != "Hello" {
		t.Fatalf("expected stripped text 'Hello', got %q", c.Text)
	}
}

func TestGroupFor(t *testing.T) {
	cases := map[string]Group{
		"a.txt":  GroupRemaining,
		"a.pdf":  GroupPDF,
		"a.docx": GroupOffice,
		"a.png":  GroupImage,
		"a.zip":  GroupArchive,
		"a.eml":  GroupEmail,
		"a.wat":  GroupUnknown,
	}
	for name, want := range cases {
		if got := GroupFor(name); got != want {
			t.Errorf("GroupFor(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestExtract_UnsupportedType(t *testing.T) {
	c := Extract(context.Background(), FileInfo{Path: "/dev/null", Name: "file.wat"})
	if c.Kind != content.KindError || c.ErrorKind != content.ErrUnsupportedType {
		t.Fatalf("expected UnsupportedType error, got %+v", c)
	}
}

func TestClassifyTextPDF(t *testing.T) {
	longPage := make([]byte, 200)
	for i := range longPage {
		longPage[i] = 'a'
	}
	direct := []string{"", string(longPage), string(longPage), string(longPage)}
	if !classifyTextPDF(direct, 3) {
		t.Error("expected text-pdf classification for long pages")
	}

	shortDirect := []string{"", "short", "", ""}
	if classifyTextPDF(shortDirect, 3) {
		t.Error("expected image-pdf classification for short pages")
	}
}
