package dispatcher

import (
	"encoding/json"
	"fmt"
	"strings"

	"jenny-assistant-be/pkg/assistant/agent"
)

const defaultReply = "OK"

// NormalizeReply picks the canonical text out of a handler result. Order:
// reply, response.message, message, ack, a textual "response", then the
// whole payload stringified, then "OK".
func NormalizeReply(r *agent.Result) string {
	if r == nil {
		return defaultReply
	}
	if r.Reply != "" {
		return r.Reply
	}
	if msg, ok := nonEmpty(r.Response["message"]); ok {
		return msg
	}
	if r.Message != "" {
		return r.Message
	}
	if r.Ack != "" {
		return r.Ack
	}
	if resp, ok := nonEmpty(r.Data["response"]); ok {
		return resp
	}
	if r.Error != "" {
		return r.Error
	}
	if len(r.Response) > 0 || len(r.Data) > 0 {
		payload := map[string]interface{}{}
		for k, v := range r.Data {
			payload[k] = v
		}
		if len(r.Response) > 0 {
			payload["response"] = r.Response
		}
		if raw, err := json.Marshal(payload); err == nil {
			return string(raw)
		}
		return fmt.Sprint(payload)
	}
	return defaultReply
}

// NormalizeMap applies NormalizeReply to a loosely shaped payload.
func NormalizeMap(m map[string]interface{}) string {
	if m == nil {
		return defaultReply
	}
	return NormalizeReply(agent.FromMap(m))
}

func nonEmpty(v interface{}) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, strings.TrimSpace(t) != ""
	case fmt.Stringer:
		s := t.String()
		return s, s != ""
	case map[string]interface{}, []interface{}:
		return "", false
	default:
		return fmt.Sprint(t), true
	}
}
