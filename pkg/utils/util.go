package utils

import (
	"encoding/json"
	"strings"

	"github.com/XiaoConstantine/evoidea-go/pkg/errors"
)

// ParseJSONResponse parses a model response as a JSON object. Responses
// wrapped in markdown code fences are unwrapped first, since models
// frequently fence JSON even when told not to.
func ParseJSONResponse(response string) (map[string]interface{}, error) {
	cleaned := strings.TrimSpace(response)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	var result map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, errors.Wrap(err, errors.MalformedOutput, "failed to parse response as JSON")
	}
	return result, nil
}
