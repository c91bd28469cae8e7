package dtf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// State is the authentication state of a Client.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticated
)

func (s State) String() string {
	if s == StateAuthenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Account is the identity resolved by the account-check step.
type Account struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// UnmarshalJSON accepts id as either a number or a numeric string.
func (a *Account) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID   json.RawMessage `json:"id"`
		Name string          `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, err := parseID(raw.ID)
	if err != nil {
		return err
	}
	a.ID = id
	a.Name = raw.Name
	return nil
}

func parseID(raw json.RawMessage) (int64, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return 0, fmt.Errorf("account id missing")
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return 0, err
		}
		trimmed = []byte(s)
	}
	id, err := strconv.ParseInt(string(trimmed), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("account id %s: %w", trimmed, err)
	}
	return id, nil
}

// DraftHandle is the module.auth object returned when a draft is opened.
type DraftHandle struct {
	Auth json.RawMessage
}

// DraftResult is the parsed response of a draft save.
type DraftResult struct {
	Code    int
	Message string
	URL     string
	Data    json.RawMessage
}
