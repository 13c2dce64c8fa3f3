// Copyright (c) Microsoft. All rights reserved.

package genui

// JSON Schemas for the built-in component kinds. Validation happens
// before renderer lookup, so the render functions can index into the
// payload without re-checking shapes.

const chartSchema = `{
  "type": "object",
  "required": ["type", "series"],
  "properties": {
    "type": {"type": "string", "enum": ["bar", "line"]},
    "series": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["label", "value"],
        "properties": {
          "label": {"type": "string"},
          "value": {"type": "number"}
        }
      }
    },
    "unit": {"type": "string"}
  }
}`

const cardSchema = `{
  "type": "object",
  "required": ["cards"],
  "properties": {
    "cards": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["title"],
        "properties": {
          "title": {"type": "string"},
          "subtitle": {"type": "string"},
          "fields": {
            "type": "object",
            "additionalProperties": {"type": "string"}
          }
        }
      }
    }
  }
}`

const tableSchema = `{
  "type": "object",
  "required": ["columns", "rows"],
  "properties": {
    "columns": {
      "type": "array",
      "minItems": 1,
      "items": {"type": "string"}
    },
    "rows": {
      "type": "array",
      "items": {
        "type": "array",
        "items": {"type": "string"}
      }
    }
  }
}`

const metricsSchema = `{
  "type": "object",
  "required": ["metrics"],
  "properties": {
    "metrics": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["label", "value"],
        "properties": {
          "label": {"type": "string"},
          "value": {"type": "string"},
          "delta": {"type": "string"}
        }
      }
    }
  }
}`
