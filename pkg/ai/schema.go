package ai

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// The marker talks to a non-deterministic model; its output is untrusted
// until it passes schema validation. Validation failure is an adapter
// failure, never forwarded downstream.

const draftResultSchema = `{
  "type": "object",
  "required": ["overall_feedback"],
  "properties": {
    "overall_feedback": {"type": "string", "minLength": 1},
    "overall_strengths": {"type": "array", "items": {"type": "string"}},
    "overall_improvements": {"type": "array", "items": {"type": "string"}},
    "question_feedback": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["question_id", "feedback"],
        "properties": {
          "question_id": {"type": "string"},
          "feedback": {"type": "string"},
          "marks_awarded": {"type": "number"},
          "marks_possible": {"type": "number"}
        }
      }
    }
  }
}`

const finalResultSchema = `{
  "type": "object",
  "required": ["overall_feedback", "total_marks_awarded", "total_marks_possible"],
  "properties": {
    "overall_feedback": {"type": "string", "minLength": 1},
    "overall_strengths": {"type": "array", "items": {"type": "string"}},
    "overall_improvements": {"type": "array", "items": {"type": "string"}},
    "question_feedback": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["question_id", "feedback"],
        "properties": {
          "question_id": {"type": "string"},
          "feedback": {"type": "string"},
          "marks_awarded": {"type": "number"},
          "marks_possible": {"type": "number"}
        }
      }
    },
    "total_marks_awarded": {"type": "number", "minimum": 0},
    "total_marks_possible": {"type": "number", "exclusiveMinimum": 0},
    "percentage": {"type": "number", "minimum": 0, "maximum": 100},
    "grade": {"type": "string"},
    "topic_scores": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["awarded", "possible"],
        "properties": {
          "awarded": {"type": "number", "minimum": 0},
          "possible": {"type": "number", "minimum": 0},
          "percentage": {"type": "number", "minimum": 0, "maximum": 100}
        }
      }
    }
  }
}`

var (
	draftSchema = jsonschema.MustCompileString("draft_result.json", draftResultSchema)
	finalSchema = jsonschema.MustCompileString("final_result.json", finalResultSchema)
)

// decodeValidated validates the raw model output against schema before
// unmarshalling it into target.
func decodeValidated(content string, schema *jsonschema.Schema, target interface{}) error {
	var generic interface{}
	decoder := json.NewDecoder(bytes.NewReader([]byte(content)))
	decoder.UseNumber()
	if err := decoder.Decode(&generic); err != nil {
		return fmt.Errorf("parse marker json: %w", err)
	}

	if err := schema.Validate(generic); err != nil {
		return fmt.Errorf("marker output failed schema validation: %w", err)
	}

	if err := json.Unmarshal([]byte(content), target); err != nil {
		return fmt.Errorf("decode marker json: %w", err)
	}

	return nil
}
