package agent

import "github.com/santhosh-tekuri/jsonschema/v5"

const decisionSchemaJSON = `{
  "type": "object",
  "required": ["status", "reason"],
  "properties": {
    "status": {"type": "string", "enum": ["APPROVED", "DENIED", "FLAGGED", "PENDING"]},
    "reason": {"type": "string"},
    "confidence": {"type": "number", "minimum": 0, "maximum": 1}
  }
}`

const issuesSchemaJSON = `{
  "type": "object",
  "required": ["issues"],
  "properties": {
    "issues": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["type", "severity", "description"],
        "properties": {
          "type": {"type": "string", "minLength": 1},
          "severity": {"type": "string", "enum": ["HIGH", "MEDIUM", "LOW"]},
          "description": {"type": "string"}
        }
      }
    }
  }
}`

const planSchemaJSON = `{
  "type": "object",
  "required": ["days"],
  "properties": {
    "days": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["day", "activities", "goals"],
        "properties": {
          "day": {"type": "integer", "minimum": 1},
          "activities": {"type": "array", "items": {"type": "string"}},
          "goals": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`

var (
	decisionSchema = jsonschema.MustCompileString("decision.json", decisionSchemaJSON)
	issuesSchema   = jsonschema.MustCompileString("issues.json", issuesSchemaJSON)
	planSchema     = jsonschema.MustCompileString("plan.json", planSchemaJSON)
)
