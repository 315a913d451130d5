package validatecompliance

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"label-compliance/internal/models"
)

// parseVerdict interprets the compliance agent reply. It never fails: an
// unusable reply becomes a verdict with Success false.
func parseVerdict(body []byte) *models.ComplianceVerdict {
	var envelope map[string]interface{}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return models.NewFailedVerdict(fmt.Sprintf("Failed to parse validation response: %v", err))
	}

	if status, _ := envelope["status"].(string); status != "success" {
		return models.NewFailedVerdict("Validation failed or returned error status")
	}

	answer, ok := envelope["answer"].(map[string]interface{})
	if !ok {
		return models.NewFailedVerdict("Validation response has no answer")
	}

	agent, ok := agentResponse(answer["agent_response"])
	if !ok {
		return models.NewFailedVerdict("Validation answer has no agent_response object")
	}

	return &models.ComplianceVerdict{
		Success:         true,
		IsCompliant:     asBool(agent["compliance"]),
		CoveragePercent: asFloat(agent["coverage_percent"]),
		MatchedCount:    int(asFloat(agent["matched_count"])),
		PartialCount:    int(asFloat(agent["partial_count"])),
		TotalRequired:   int(asFloat(agent["total_required"])),
		MissingItems:    missingItems(agent["missing_items"]),
		PartialMatches:  partialMatches(agent["partial_matches"]),
		Conflicts:       conflicts(agent["conflicts"]),
		Evidence:        evidence(agent["evidence"]),
		Notes:           asString(agent["notes"]),
		References:      stringList(answer["references"]),
	}
}

// agentResponse accepts an object or a JSON-encoded object string.
func agentResponse(v interface{}) (map[string]interface{}, bool) {
	switch t := v.(type) {
	case map[string]interface{}:
		return t, true
	case string:
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(strings.TrimSpace(t)), &obj); err != nil || obj == nil {
			return nil, false
		}
		return obj, true
	}
	return nil, false
}

func asBool(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(strings.TrimSpace(t), "true")
	}
	return false
}

func asFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), "%")), 64)
		if err == nil {
			return f
		}
	}
	return 0
}

func asString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case map[string]interface{}, []interface{}:
		b, _ := json.Marshal(t)
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}

// objects returns list items as field maps; a bare string item becomes
// {fallbackKey: item}.
func objects(v interface{}, fallbackKey string) []map[string]interface{} {
	list, _ := v.([]interface{})
	out := make([]map[string]interface{}, 0, len(list))
	for _, item := range list {
		switch t := item.(type) {
		case map[string]interface{}:
			out = append(out, t)
		case nil:
		default:
			out = append(out, map[string]interface{}{fallbackKey: asString(t)})
		}
	}
	return out
}

func missingItems(v interface{}) []models.MissingItem {
	items := objects(v, "requirement_text")
	out := make([]models.MissingItem, 0, len(items))
	for _, m := range items {
		out = append(out, models.MissingItem{
			Key:             asString(m["key"]),
			RequirementText: asString(m["requirement_text"]),
		})
	}
	return out
}

func partialMatches(v interface{}) []models.PartialMatch {
	items := objects(v, "requirement_text")
	out := make([]models.PartialMatch, 0, len(items))
	for _, m := range items {
		out = append(out, models.PartialMatch{
			Key:             asString(m["key"]),
			RequirementText: asString(m["requirement_text"]),
			Observed:        asString(m["observed"]),
		})
	}
	return out
}

func conflicts(v interface{}) []models.Conflict {
	items := objects(v, "detail")
	out := make([]models.Conflict, 0, len(items))
	for _, m := range items {
		out = append(out, models.Conflict{
			Type:     asString(m["type"]),
			Detail:   asString(m["detail"]),
			Observed: asString(m["observed"]),
		})
	}
	return out
}

func evidence(v interface{}) map[string]interface{} {
	if m, ok := v.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}

func stringList(v interface{}) []string {
	switch t := v.(type) {
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := asString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if t != "" {
			return []string{t}
		}
	}
	return []string{}
}
