package dtf

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// maxBodySize caps a decoded response body.
var maxBodySize int64 = 32 << 20

// errBodyTooLarge is returned when a decoded body exceeds maxBodySize.
var errBodyTooLarge = errors.New("response body too large")

// readBody decodes the body according to Content-Encoding. The transport's
// transparent gzip is disabled because Accept-Encoding is set explicitly.
func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	switch enc := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))); enc {
	case "", "identity":
	case "gzip", "x-gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "deflate":
		zr, err := zlib.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("deflate: %w", err)
		}
		defer zr.Close()
		reader = zr
	case "br":
		reader = brotli.NewReader(resp.Body)
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", enc)
	}
	data, err := io.ReadAll(io.LimitReader(reader, maxBodySize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBodySize {
		return nil, fmt.Errorf("%w: over %d bytes", errBodyTooLarge, maxBodySize)
	}
	return data, nil
}
