// Package state decodes the opaque OAuth `state` parameter that carries the
// calling application's client id across the consent redirect.
package state

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Yulian302/classroom-tokens/apperror"
)

// ClientState is the JSON document embedded in the state parameter.
type ClientState struct {
	ClientID string `json:"clientid"`
}

// Decode parses URL-safe base64 JSON of the form {"clientid": "<id>"}.
// Padding is optional, and '+' and '/' from the standard alphabet are read
// as '-' and '_'.
func Decode(raw string) (ClientState, error) {
	payload, err := decodeBase64(raw)
	if err != nil {
		return ClientState{}, fmt.Errorf("%w: %w", apperror.ErrInvalidState, err)
	}
	if !utf8.Valid(payload) {
		return ClientState{}, fmt.Errorf("%w: payload is not valid utf-8", apperror.ErrInvalidState)
	}

	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		return ClientState{}, fmt.Errorf("%w: %w", apperror.ErrInvalidState, err)
	}
	if fields == nil {
		return ClientState{}, fmt.Errorf("%w: payload is not a json object", apperror.ErrInvalidState)
	}

	clientID, _ := fields["clientid"].(string)
	if clientID == "" {
		return ClientState{}, apperror.ErrMissingClientID
	}

	return ClientState{ClientID: clientID}, nil
}

// Encode is the inverse of Decode, producing the padded form callers put in
// the consent URL.
func Encode(clientID string) (string, error) {
	payload, err := json.Marshal(ClientState{ClientID: clientID})
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(payload), nil
}

var standardToURL = strings.NewReplacer("+", "-", "/", "_")

func decodeBase64(raw string) ([]byte, error) {
	raw = standardToURL.Replace(strings.TrimSpace(raw))
	if strings.HasSuffix(raw, "=") {
		return base64.URLEncoding.DecodeString(raw)
	}
	return base64.RawURLEncoding.DecodeString(raw)
}
