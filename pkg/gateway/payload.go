package gateway

import "encoding/json"

// buildPayload selects the fields forwarded to each integration type. Unknown
// types forward an empty payload; custom webhooks parse their body from
// config, tolerating malformed JSON.
func buildPayload(nodeType string, config map[string]any) map[string]any {
	switch nodeType {
	case "n8n-video-generator":
		return map[string]any{
			"prompt":    stringValue(config, "prompt"),
			"images":    listValue(config, "images"),
			"platforms": listValue(config, "platforms"),
		}
	case "n8n-seo-writer":
		return map[string]any{
			"topic":    stringValue(config, "topic"),
			"keywords": listValue(config, "keywords"),
			"length":   stringValueDefault(config, "length", "medium"),
		}
	case "n8n-omnipost":
		return map[string]any{
			"content":       stringValue(config, "content"),
			"platforms":     listValue(config, "platforms"),
			"schedule_time": config["schedule_time"],
		}
	case CustomWebhookType:
		return parseBody(config)
	default:
		return map[string]any{}
	}
}

func parseBody(config map[string]any) map[string]any {
	body, _ := config["body"].(string)
	if body == "" {
		return map[string]any{}
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return map[string]any{}
	}

	return payload
}

func stringValue(config map[string]any, key string) string {
	value, _ := config[key].(string)

	return value
}

func stringValueDefault(config map[string]any, key, fallback string) string {
	if value, ok := config[key].(string); ok && value != "" {
		return value
	}

	return fallback
}

func listValue(config map[string]any, key string) []any {
	if value, ok := config[key].([]any); ok {
		return value
	}

	return []any{}
}
