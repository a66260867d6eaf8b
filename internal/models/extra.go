package models

import (
	"encoding/json"
	"fmt"
)

var entryKeys = []string{"id", "timestamp", "food", "image", "isManual"}

type diaryEntryFields DiaryEntry

// UnmarshalJSON decodes the modelled fields and keeps every other key in Extra
func (e *DiaryEntry) UnmarshalJSON(data []byte) error {
	var fields diaryEntryFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	extra, err := unknownKeys(data)
	if err != nil {
		return err
	}
	*e = DiaryEntry(fields)
	e.Extra = extra
	return nil
}

// MarshalJSON writes the modelled fields followed by the preserved extra keys
func (e DiaryEntry) MarshalJSON() ([]byte, error) {
	return withExtra(diaryEntryFields(e), e.Extra)
}

type createEntryFields CreateEntryRequest

func (r *CreateEntryRequest) UnmarshalJSON(data []byte) error {
	var fields createEntryFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	extra, err := unknownKeys(data)
	if err != nil {
		return err
	}
	*r = CreateEntryRequest(fields)
	r.Extra = extra
	return nil
}

func (r CreateEntryRequest) MarshalJSON() ([]byte, error) {
	return withExtra(createEntryFields(r), r.Extra)
}

// unknownKeys returns the keys of the object in data that are not entry fields
func unknownKeys(data []byte) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	for _, k := range entryKeys {
		delete(raw, k)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return raw, nil
}

// withExtra encodes v and adds the extra keys it does not already carry
func withExtra(v any, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, fmt.Errorf("merge extra entry keys: %w", err)
	}
	for k, raw := range extra {
		if _, ok := merged[k]; !ok {
			merged[k] = raw
		}
	}
	return json.Marshal(merged)
}
