package internal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSchemaValidate(t *testing.T) {
	t.Parallel()

	postSchema := Object(map[string]Property{
		"title":   Required(TypeString),
		"content": Required(TypeString),
		"tags":    Optional(TypeArray),
		"pinned":  Optional(TypeBoolean),
		"score":   Optional(TypeNumber),
	})

	t.Run("nil schema accepts anything", func(t *testing.T) {
		t.Parallel()

		var s *Schema
		require.Empty(t, s.Validate(map[string]any{"whatever": 1}))
	})

	t.Run("empty body reports every required field", func(t *testing.T) {
		t.Parallel()

		errs := postSchema.Validate(map[string]any{})
		require.Len(t, errs, 2)
		require.Equal(t, []string{"content is required", "title is required"}, errs)
	})

	t.Run("valid body passes", func(t *testing.T) {
		t.Parallel()

		errs := postSchema.Validate(map[string]any{
			"title":   "T",
			"content": "C",
			"tags":    []any{"go"},
			"pinned":  true,
			"score":   4.5,
		})
		require.Empty(t, errs)
	})

	t.Run("type mismatches accumulate without failing fast", func(t *testing.T) {
		t.Parallel()

		errs := postSchema.Validate(map[string]any{
			"title":   42.0,
			"content": "ok",
			"tags":    "not-an-array",
		})
		require.Len(t, errs, 2)
		require.Contains(t, errs, "title must be of type string")
		require.Contains(t, errs, "tags must be of type array")
	})

	t.Run("unknown fields always pass through silently", func(t *testing.T) {
		t.Parallel()

		errs := postSchema.Validate(map[string]any{
			"title":    "T",
			"content":  "C",
			"surprise": map[string]any{"nested": true},
		})
		require.Empty(t, errs)
	})

	t.Run("optional field may be absent but not mistyped", func(t *testing.T) {
		t.Parallel()

		require.Empty(t, postSchema.Validate(map[string]any{"title": "T", "content": "C"}))

		errs := postSchema.Validate(map[string]any{"title": "T", "content": "C", "pinned": "yes"})
		require.Equal(t, []string{"pinned must be of type boolean"}, errs)
	})

	t.Run("nil value counts as absent", func(t *testing.T) {
		t.Parallel()

		errs := postSchema.Validate(map[string]any{"title": nil, "content": "C"})
		require.Equal(t, []string{"title is required"}, errs)
	})

	t.Run("integers satisfy the number type", func(t *testing.T) {
		t.Parallel()

		errs := postSchema.Validate(map[string]any{"title": "T", "content": "C", "score": 3})
		require.Empty(t, errs)
	})
}
