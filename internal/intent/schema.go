package intent

import "github.com/santhosh-tekuri/jsonschema/v5"

// commandSchema is the canonical element shape the prompt asks the model for.
const commandSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["intent"],
  "additionalProperties": false,
  "properties": {
    "intent": {
      "enum": ["add", "update", "delete", "search", "get_field", "get_description",
               "book_details", "list_all", "help", "unknown"]
    },
    "criteria": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "id":           {"type": "string"},
        "title":        {"type": "string"},
        "titlePartial": {"type": "boolean"},
        "authors":      {"type": "array", "items": {"type": "string"}},
        "genres":       {"type": "array", "items": {"type": "string"}},
        "moods":        {"type": "array", "items": {"type": "string"}},
        "year":         {"type": "integer"},
        "yearAfter":    {"type": "integer"},
        "yearBefore":   {"type": "integer"},
        "query":        {"type": "string"}
      }
    },
    "data": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "title":         {"type": "string", "minLength": 1},
        "authors":       {"type": "array", "items": {"type": "string"}},
        "genres":        {"type": "array", "items": {"type": "string"}},
        "moods":         {"type": "array", "items": {"type": "string"}},
        "year":          {"type": "integer"},
        "coverUrl":      {"type": "string"},
        "openLibraryId": {"type": "string"},
        "description":   {"type": "string"},
        "bookUrl":       {"type": "string"}
      }
    },
    "field": {"type": "string"}
  }
}`

var compiledSchema = jsonschema.MustCompileString("shelfbot://command.json", commandSchema)
