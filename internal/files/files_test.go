package files

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestMIMEType(t *testing.T) {
	tests := map[string]string{
		"a.png":  "image/png",
		"a.JPG":  "image/jpeg",
		"a.jpeg": "image/jpeg",
		"a.gif":  "image/gif",
		"a.WebP": "image/webp",
	}
	for name, want := range tests {
		got, ok := MIMEType(name)
		if !ok || got != want {
			t.Errorf("MIMEType(%q) = %q, %v; want %q", name, got, ok, want)
		}
	}
	if _, ok := MIMEType("notes.txt"); ok {
		t.Error("txt should not be accepted")
	}
	if _, ok := MIMEType("noext"); ok {
		t.Error("file without extension should not be accepted")
	}
}

func TestFromDirectory_RecursiveLexical(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.png"))
	touch(t, filepath.Join(root, "a.jpg"))
	touch(t, filepath.Join(root, "readme.txt"))
	touch(t, filepath.Join(root, "sub", "c.gif"))

	titler, err := NewTitler(`\.[^.]+$`, "")
	if err != nil {
		t.Fatal(err)
	}
	tasks, err := FromDirectory(root, titler)
	if err != nil {
		t.Fatalf("FromDirectory: %v", err)
	}
	want := []struct{ rel, title, mime string }{
		{"a.jpg", "a", "image/jpeg"},
		{"b.png", "b", "image/png"},
		{filepath.Join("sub", "c.gif"), "c", "image/gif"},
	}
	if len(tasks) != len(want) {
		t.Fatalf("got %d tasks, want %d", len(tasks), len(want))
	}
	for i, w := range want {
		if tasks[i].Path != filepath.Join(root, w.rel) {
			t.Errorf("task %d path = %q", i, tasks[i].Path)
		}
		if tasks[i].Title != w.title || tasks[i].MIMEType != w.mime {
			t.Errorf("task %d = %+v, want title %q mime %q", i, tasks[i], w.title, w.mime)
		}
	}
}

func TestFromDirectory_Empty(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "notes.txt"))
	_, err := FromDirectory(root, nil)
	if !errors.Is(err, ErrNoFiles) {
		t.Fatalf("err = %v, want ErrNoFiles", err)
	}
}

func TestFromDirectory_NotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.png")
	touch(t, path)
	if _, err := FromDirectory(path, nil); err == nil {
		t.Fatal("expected error for file root")
	}
}

func TestFromList(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "z.png")
	b := filepath.Join(root, "a.webp")
	txt := filepath.Join(root, "x.txt")
	for _, p := range []string{a, b, txt} {
		touch(t, p)
	}

	tasks, err := FromList([]string{a, txt, b}, nil)
	if err != nil {
		t.Fatalf("FromList: %v", err)
	}
	if len(tasks) != 2 || tasks[0].Path != a || tasks[1].Path != b {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
	if tasks[0].Title != "" {
		t.Errorf("nil titler should give empty title, got %q", tasks[0].Title)
	}

	if _, err := FromList([]string{filepath.Join(root, "missing.png")}, nil); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file err = %v", err)
	}
	if _, err := FromList([]string{txt}, nil); !errors.Is(err, ErrNoFiles) {
		t.Errorf("only unsupported err = %v", err)
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList("/a/b.png, /c d/e.jpg,  , /f.gif")
	want := []string{"/a/b.png", "/c d/e.jpg", "/f.gif"}
	if len(got) != len(want) {
		t.Fatalf("SplitList = %q", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SplitList[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if SplitList("") != nil {
		t.Error("empty input should yield nil")
	}
}

func TestTitler(t *testing.T) {
	empty, err := NewTitler("", "ignored")
	if err != nil {
		t.Fatal(err)
	}
	if got := empty.Title("/x/cat.png"); got != "" {
		t.Errorf("empty pattern title = %q", got)
	}

	ti, err := NewTitler(`^(\d+)_(.*)\.png$`, "#$1 $2")
	if err != nil {
		t.Fatal(err)
	}
	if got := ti.Title("/shots/01_boss fight.png"); got != "#01 boss fight" {
		t.Errorf("Title = %q", got)
	}

	if _, err := NewTitler("(", ""); err == nil {
		t.Error("expected compile error")
	}
}

func TestTask_Upload(t *testing.T) {
	task := Task{Title: "t"}
	if task.Upload().Success {
		t.Error("pending task should not be a success")
	}
	task.Done = true
	if !task.Upload().Success {
		t.Error("done task without error should be a success")
	}
	task.Err = errors.New("boom")
	if task.Upload().Success {
		t.Error("failed task should not be a success")
	}
}

func TestLoad_DirectoryOrList(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a.png")
	b := filepath.Join(root, "b.jpg")
	touch(t, a)
	touch(t, b)

	tasks, err := Load(root, nil)
	if err != nil || len(tasks) != 2 {
		t.Fatalf("Load(dir) = %v, %v", tasks, err)
	}

	tasks, err = Load(b+", "+a, nil)
	if err != nil || len(tasks) != 2 || tasks[0].Path != b {
		t.Fatalf("Load(list) = %v, %v", tasks, err)
	}

	if _, err := Load("  ", nil); !errors.Is(err, ErrNoFiles) {
		t.Fatalf("Load(blank) err = %v", err)
	}
}
