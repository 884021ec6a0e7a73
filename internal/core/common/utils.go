package common

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseJSON extracts and unmarshals the JSON object embedded in an LLM
// completion. Models routinely wrap the object in markdown fences or
// prose, so we take the span from the first '{' to the last '}'.
func ParseJSON[T any](response string) (T, error) {
	var zero T

	start := strings.Index(response, "{")
	if start == -1 {
		return zero, fmt.Errorf("no JSON object found in response")
	}
	end := strings.LastIndex(response, "}")
	if end == -1 || end < start {
		return zero, fmt.Errorf("unterminated JSON object in response")
	}

	jsonStr := response[start : end+1]

	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w\nData: %s", err, jsonStr)
	}
	return result, nil
}

// Clamp01 bounds a model-supplied score to [0,1]. Confidence values are
// advisory and cannot be trusted to respect the contract.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
