// Package openapi imports OpenAPI component schemas as schema definitions so
// existing API models can seed an editor schema. kin-openapi stays behind this
// package; callers only see schema.Definition.
package openapi
