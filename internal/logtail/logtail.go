package logtail

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxTailBytes bounds how much of the file end is read.
const maxTailBytes = 256 * 1024

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line within the tail window. A missing
// file yields no lines and no error.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat log: %w", err)
	}
	size := info.Size()
	offset := int64(0)
	if size > maxTailBytes {
		offset = size - maxTailBytes
	}
	buf := make([]byte, size-offset)
	if _, err := file.ReadAt(buf, offset); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read log: %w", err)
	}
	if offset > 0 {
		// drop the partial first line
		if i := bytes.IndexByte(buf, '\n'); i >= 0 {
			buf = buf[i+1:]
		}
	}

	text := strings.TrimRight(string(buf), "\n")
	if text == "" {
		return nil, nil
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return lines, nil
}

// Level extracts the slog level of a text-handler line, or "" when the line
// carries none.
func Level(line string) string {
	idx := strings.Index(line, "level=")
	if idx < 0 {
		return ""
	}
	rest := line[idx+len("level="):]
	if end := strings.IndexByte(rest, ' '); end >= 0 {
		rest = rest[:end]
	}
	switch {
	case strings.HasPrefix(rest, "ERROR"):
		return "ERROR"
	case strings.HasPrefix(rest, "WARN"):
		return "WARN"
	case strings.HasPrefix(rest, "INFO"):
		return "INFO"
	case strings.HasPrefix(rest, "DEBUG"):
		return "DEBUG"
	}
	return ""
}
