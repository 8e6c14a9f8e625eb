package feed

import (
	"bytes"
	"encoding/json"
	"errors"

	appLog "afisha/internal/log"
	"afisha/internal/model"
)

// ErrNotArray is returned when the payload is valid JSON but not an array.
var ErrNotArray = errors.New("feed payload is not a JSON array")

// DecodeEvents decodes a feed payload into events.
//
//   - The payload must be a JSON array; anything else yields ErrNotArray
//     (valid JSON) or the underlying syntax error.
//   - Elements that are not JSON objects are skipped and logged; they never
//     fail the whole payload.
//   - Individual fields are decoded leniently by model.Event.
func DecodeEvents(body []byte) ([]model.Event, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, ErrNotArray
	}

	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, ErrNotArray
		}
		return nil, err
	}

	events := make([]model.Event, 0, len(items))
	skipped := 0
	for i, raw := range items {
		var ev model.Event
		if !isObject(raw) {
			skipped++
			appLog.Debug("feed record skipped", "index", i, "reason", "not an object")
			continue
		}
		if err := json.Unmarshal(raw, &ev); err != nil {
			skipped++
			appLog.Debug("feed record skipped", "index", i, "err", err)
			continue
		}
		events = append(events, ev)
	}

	if skipped > 0 {
		appLog.Warn("feed contained malformed records", "skipped", skipped, "decoded", len(events))
	}
	return events, nil
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}
