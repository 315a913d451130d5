package queryregulations

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"label-compliance/internal/models"
)

// parseAnswer reads the regulations agent reply. A missing or blank answer is
// not an error; it leaves Answer nil.
func parseAnswer(body []byte) (*models.RegulationsAnswer, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("regulations response is not a JSON object: %w", err)
	}

	var data map[string]json.RawMessage
	var dataText string
	if raw, ok := envelope["data"]; ok {
		if err := json.Unmarshal(raw, &dataText); err != nil {
			_ = json.Unmarshal(raw, &data)
		}
	}

	answer := &models.RegulationsAnswer{Sources: []string{}}

	text := rawString(envelope["answer"])
	if text == "" {
		text = dataText
	}
	if text == "" {
		text = rawString(data["answer"])
	}
	if strings.TrimSpace(text) != "" {
		answer.Answer = &text
	}

	for _, scope := range []map[string]json.RawMessage{envelope, data} {
		if sources := firstList(scope, "sources", "references"); sources != nil {
			answer.Sources = sources
			break
		}
	}
	for _, scope := range []map[string]json.RawMessage{envelope, data} {
		if c, ok := rawFloat(scope["confidence"]); ok {
			answer.Confidence = &c
			break
		}
	}
	return answer, nil
}

func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

// firstList returns the first of keys holding a list or a single string.
func firstList(scope map[string]json.RawMessage, keys ...string) []string {
	for _, key := range keys {
		raw, ok := scope[key]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			continue
		}
		var list []interface{}
		if err := json.Unmarshal(raw, &list); err == nil {
			out := make([]string, 0, len(list))
			for _, item := range list {
				if s, ok := item.(string); ok {
					out = append(out, s)
				} else if item != nil {
					out = append(out, fmt.Sprint(item))
				}
			}
			return out
		}
		if s := rawString(raw); s != "" {
			return []string{s}
		}
	}
	return nil
}

func rawFloat(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	if s := rawString(raw); s != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
