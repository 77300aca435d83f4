package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/talgya/starlane/internal/agents"
)

// maxRulesBody caps a rule-list upload.
const maxRulesBody = 64 << 10

// Operators are free-form: an unknown operator is stored
// and evaluates to false.
var rulesSchema = jsonschema.MustCompileString("rules.schema.json", fmt.Sprintf(`{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["rules"],
  "additionalProperties": false,
  "properties": {
    "rules": {
      "type": "array",
      "maxItems": 32,
      "items": {
        "type": "object",
        "required": ["condition", "action"],
        "additionalProperties": false,
        "properties": {
          "id": {"type": "string", "maxLength": 64},
          "condition": {
            "type": "object",
            "required": ["good", "operator", "threshold"],
            "additionalProperties": false,
            "properties": {
              "good": {"type": "string", "minLength": 1},
              "operator": {"type": "string", "maxLength": 4},
              "threshold": {"type": "number"},
              "product_type": {"enum": %s}
            }
          },
          "action": {"enum": %s},
          "destination": {
            "type": "object",
            "additionalProperties": false,
            "properties": {
              "name": {"type": "string", "maxLength": 128},
              "type": {"enum": %s}
            }
          },
          "required": {"type": "boolean"}
        }
      }
    }
  }
}`, enumJSON(agents.Products), enumJSON(agents.AllActions), enumJSON(agents.AllTypes)))

func enumJSON[T ~string](values []T) string {
	b, _ := json.Marshal(values)
	return string(b)
}

// decodeRules validates body against the rule schema and decodes it.
// Rules without an id get a fresh one.
func decodeRules(body []byte) ([]agents.Rule, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	if err := rulesSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}

	var req struct {
		Rules []agents.Rule `json:"rules"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	for i := range req.Rules {
		if strings.TrimSpace(req.Rules[i].ID) == "" {
			req.Rules[i].ID = agents.NewRuleID()
		}
	}
	return req.Rules, nil
}

func (s *Server) handleSetRules(w http.ResponseWriter, r *http.Request, id agents.AgentID) {
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRulesBody))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}
	rules, err := decodeRules(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.Sim.SetRules(id, rules); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, map[string]any{"success": true, "agent": id, "rules": rules})
}
