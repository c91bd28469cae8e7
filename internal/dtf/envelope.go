package dtf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
)

// Envelope is a decoded response object. Most endpoints wrap their payload
// as {rc, rm, data, result}; some omit rc entirely.
type Envelope struct {
	Code    int
	HasCode bool
	fields  map[string]json.RawMessage
}

// Has reports whether the top-level key is present.
func (e Envelope) Has(key string) bool {
	_, ok := e.fields[key]
	return ok
}

// Raw returns the undecoded value stored under key.
func (e Envelope) Raw(key string) json.RawMessage {
	return e.fields[key]
}

// Decode unmarshals the value stored under key into dest.
func (e Envelope) Decode(key string, dest any) error {
	raw, ok := e.fields[key]
	if !ok {
		return fmt.Errorf("field %q missing", key)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode %q: %w", key, err)
	}
	return nil
}

// parseEnvelope applies the response rules shared by every endpoint.
func parseEnvelope(body []byte, logger *slog.Logger) (Envelope, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		if err == nil {
			err = fmt.Errorf("response is not a JSON object")
		}
		logger.Error("failed to parse JSON", "error", err, "body", string(body))
		return Envelope{}, &Error{
			Kind:    KindInvalidResponse,
			Code:    CodeMalformedJSON,
			Message: "failed to parse JSON",
			Body:    string(body),
			Err:     err,
		}
	}

	env := Envelope{fields: fields}
	rawCode, ok := fields["rc"]
	if !ok {
		return env, nil
	}
	code, ok := integerCode(rawCode)
	if !ok {
		logger.Warn("unknown response code type", "rc", string(rawCode))
		return env, nil
	}
	env.Code = code
	env.HasCode = true
	if code == 200 {
		return env, nil
	}

	logger.Error("server returned error code", "rc", code)
	message := responseMessage(fields["rm"])
	if message == "" {
		logger.Error("unknown reason", "body", string(body))
	} else {
		logger.Error("server reason", "rm", message)
	}
	return env, invalidResponse(code, message)
}

func integerCode(raw json.RawMessage) (int, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0, false
	}
	if c := trimmed[0]; c != '-' && (c < '0' || c > '9') {
		return 0, false
	}
	code, err := strconv.Atoi(string(trimmed))
	if err != nil {
		return 0, false
	}
	return code, true
}

func responseMessage(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	return string(trimmed)
}
