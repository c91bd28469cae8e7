package draft

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Asset is one result element returned by the upload endpoint.
type Asset struct {
	Type   string          `json:"type"`
	Render json.RawMessage `json:"render,omitempty"`
	Data   AssetData       `json:"data"`
}

// AssetData holds the uploaded file description. Fields without a typed
// counterpart are kept in Extra and written back unchanged.
type AssetData struct {
	UUID   string
	Width  int
	Height int
	Size   int64
	Color  string
	Extra  map[string]json.RawMessage
}

var typedAssetKeys = map[string]bool{
	"uuid":   true,
	"width":  true,
	"height": true,
	"size":   true,
	"color":  true,
}

// UnmarshalJSON splits the known fields from the rest.
func (d *AssetData) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*d = AssetData{}
	var err error
	if d.UUID, err = stringField(fields, "uuid"); err != nil {
		return err
	}
	if d.Color, err = stringField(fields, "color"); err != nil {
		return err
	}
	width, err := intField(fields, "width")
	if err != nil {
		return err
	}
	height, err := intField(fields, "height")
	if err != nil {
		return err
	}
	d.Width, d.Height = int(width), int(height)
	if d.Size, err = intField(fields, "size"); err != nil {
		return err
	}
	for k, v := range fields {
		if typedAssetKeys[k] {
			continue
		}
		if d.Extra == nil {
			d.Extra = make(map[string]json.RawMessage)
		}
		d.Extra[k] = v
	}
	return nil
}

// MarshalJSON writes the typed fields and every preserved extra.
func (d AssetData) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Extra)+5)
	for k, v := range d.Extra {
		out[k] = v
	}
	out["uuid"] = d.UUID
	out["width"] = d.Width
	out["height"] = d.Height
	out["size"] = d.Size
	out["color"] = d.Color
	return json.Marshal(out)
}

func stringField(fields map[string]json.RawMessage, key string) (string, error) {
	raw, ok := fields[key]
	if !ok || isNull(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("asset %s: %w", key, err)
	}
	return s, nil
}

// intField accepts integral numbers in any JSON spelling, e.g. 1024 or 1024.0.
func intField(fields map[string]json.RawMessage, key string) (int64, error) {
	raw, ok := fields[key]
	if !ok || isNull(raw) {
		return 0, nil
	}
	text := string(bytes.TrimSpace(raw))
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("asset %s: not an integer: %s", key, text)
	}
	return int64(f), nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
