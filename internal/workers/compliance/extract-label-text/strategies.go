package extractlabeltext

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// textFields are probed in this order on the response object.
var textFields = []string{"text", "content", "extracted_text", "result", "answer", "response"}

// Strategy probes one response shape for label text.
type Strategy struct {
	Name  string
	Probe func(obj map[string]json.RawMessage) (string, bool)
}

// DefaultStrategies is the fallback chain used on every 2xx response.
var DefaultStrategies = []Strategy{
	{Name: "fields", Probe: probeFields},
	{Name: "results", Probe: probeFirstResult},
	{Name: "agent_response", Probe: probeAgentResponse},
}

// probeFields returns the first present text field. A present but blank field
// is reported as not found so later strategies get a chance.
func probeFields(obj map[string]json.RawMessage) (string, bool) {
	for _, field := range textFields {
		raw, ok := obj[field]
		if !ok {
			continue
		}
		text := stringify(raw)
		if strings.TrimSpace(text) == "" {
			return "", false
		}
		return text, true
	}
	return "", false
}

func probeFirstResult(obj map[string]json.RawMessage) (string, bool) {
	raw, ok := obj["results"]
	if !ok {
		return "", false
	}
	var results []json.RawMessage
	if err := json.Unmarshal(raw, &results); err != nil || len(results) == 0 {
		return "", false
	}
	var first map[string]json.RawMessage
	if err := json.Unmarshal(results[0], &first); err != nil {
		return "", false
	}
	return probeFields(first)
}

func probeAgentResponse(obj map[string]json.RawMessage) (string, bool) {
	raw, ok := obj["responses"]
	if !ok {
		return "", false
	}
	var responses map[string]json.RawMessage
	if err := json.Unmarshal(raw, &responses); err != nil {
		return "", false
	}
	agent, ok := responses["agent_response"]
	if !ok {
		return "", false
	}

	var s string
	if err := json.Unmarshal(agent, &s); err == nil {
		return s, strings.TrimSpace(s) != ""
	}

	pairs, err := orderedObject(agent)
	if err != nil || len(pairs) == 0 {
		return "", false
	}
	lines := make([]string, 0, len(pairs))
	for _, p := range pairs {
		lines = append(lines, fmt.Sprintf("%s: %s", titleKey(p.key), stringify(p.value)))
	}
	return strings.Join(lines, "\n"), true
}

type keyValue struct {
	key   string
	value json.RawMessage
}

// orderedObject decodes a JSON object keeping the key order of the document.
func orderedObject(raw json.RawMessage) ([]keyValue, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("not an object")
	}

	var pairs []keyValue
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		pairs = append(pairs, keyValue{key: key, value: value})
	}
	return pairs, nil
}

// titleKey turns "net_weight" into "Net Weight". Casers carry state, so one is
// built per call.
func titleKey(key string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(key, "_", " "))
}

// stringify renders a JSON value as display text: strings unquoted, null empty,
// everything else as compact JSON.
func stringify(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	return string(trimmed)
}

// probeText runs the strategies against the response target. A string data
// envelope is the text itself.
func probeText(body []byte, strategies []Strategy) (string, string, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", "", fmt.Errorf("response is not a JSON object: %w", err)
	}

	target := envelope
	if data, ok := envelope["data"]; ok {
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			return s, "data", nil
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err == nil {
			target = obj
		}
	}

	for _, strategy := range strategies {
		if text, ok := strategy.Probe(target); ok {
			return text, strategy.Name, nil
		}
	}
	return "", "", nil
}

// envelopeError returns the upstream error message when the envelope carries one.
func envelopeError(body []byte) (string, bool) {
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Error) == 0 {
		return "", false
	}
	trimmed := bytes.TrimSpace(envelope.Error)
	if bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte(`""`)) || bytes.Equal(trimmed, []byte("{}")) {
		return "", false
	}

	var detail struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(trimmed, &detail); err == nil {
		if detail.Message == "" {
			return "Unknown LLM error", true
		}
		return detail.Message, true
	}
	return stringify(trimmed), true
}
