// Package files turns a directory or an explicit list into upload tasks.
package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/five82/imageposter/internal/draft"
)

// ErrNoFiles is returned when nothing uploadable was found.
var ErrNoFiles = errors.New("no supported image files")

var mimeTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Extensions lists the accepted file extensions in display order.
func Extensions() []string {
	out := make([]string, 0, len(mimeTypes))
	for ext := range mimeTypes {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// MIMEType returns the content type for path and whether it is accepted.
func MIMEType(path string) (string, bool) {
	mt, ok := mimeTypes[strings.ToLower(filepath.Ext(path))]
	return mt, ok
}

// Task is one file to upload. Asset and Err are filled in by the pipeline.
type Task struct {
	Path     string
	Title    string
	MIMEType string

	Asset draft.Asset
	Err   error
	Done  bool
}

// Success reports whether the task was uploaded.
func (t Task) Success() bool { return t.Done && t.Err == nil }

// Upload converts the task into the draft builder's input.
func (t Task) Upload() draft.Upload {
	return draft.Upload{Title: t.Title, Asset: t.Asset, Success: t.Success()}
}

// Titler derives an image caption from its file name.
type Titler struct {
	re      *regexp.Regexp
	replace string
}

// NewTitler compiles find. An empty pattern yields empty titles.
func NewTitler(find, replace string) (*Titler, error) {
	if find == "" {
		return &Titler{}, nil
	}
	re, err := regexp.Compile(find)
	if err != nil {
		return nil, fmt.Errorf("compile title pattern: %w", err)
	}
	return &Titler{re: re, replace: replace}, nil
}

// Title applies the pattern to the base name of path.
func (t *Titler) Title(path string) string {
	if t == nil || t.re == nil {
		return ""
	}
	return t.re.ReplaceAllString(filepath.Base(path), t.replace)
}

// FromDirectory walks root recursively in lexical order and keeps accepted
// image files.
func FromDirectory(root string, titler *Titler) ([]Task, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	var tasks []Task
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if mt, ok := MIMEType(path); ok {
			tasks = append(tasks, Task{Path: path, Title: titler.Title(path), MIMEType: mt})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("%s: %w", root, ErrNoFiles)
	}
	return tasks, nil
}

// FromList builds tasks from explicit paths, keeping their order. Missing
// files are an error; unsupported extensions are skipped.
func FromList(paths []string, titler *Titler) ([]Task, error) {
	var tasks []Task
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat file: %w", err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", p)
		}
		mt, ok := MIMEType(p)
		if !ok {
			continue
		}
		tasks = append(tasks, Task{Path: p, Title: titler.Title(p), MIMEType: mt})
	}
	if len(tasks) == 0 {
		return nil, ErrNoFiles
	}
	return tasks, nil
}

// SplitList parses the ", " separated list used by the file picker field.
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ", ") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load accepts what the user typed into the source field: a directory or a
// ", " separated list of files.
func Load(source string, titler *Titler) ([]Task, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, ErrNoFiles
	}
	if info, err := os.Stat(source); err == nil && info.IsDir() {
		return FromDirectory(source, titler)
	}
	return FromList(SplitList(source), titler)
}
