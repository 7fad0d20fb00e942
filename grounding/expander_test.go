package grounding

import (
	"testing"

	"github.com/poiesic/grounder/core"
	"github.com/stretchr/testify/assert"
)

func TestExpandQuery(t *testing.T) {
	identity := &core.UserContext{
		UserId:      "user@contoso.com",
		Role:        "Finance Manager",
		Department:  "Finance",
		CurrentDate: "2024-09-05",
	}

	t.Run("appends full context", func(t *testing.T) {
		query := ExpandQuery("What were last quarter's findings?", identity)
		assert.Contains(t, query, "What were last quarter's findings?")
		assert.Contains(t, query, "current date: 2024-09-05")
		assert.Contains(t, query, "user role: Finance Manager")
		assert.Contains(t, query, "department: Finance")
	})

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t,
			ExpandQuery("same prompt", identity),
			ExpandQuery("same prompt", identity))
	})

	t.Run("missing fields render as unknown", func(t *testing.T) {
		query := ExpandQuery("prompt", &core.UserContext{UserId: "u@x"})
		assert.Contains(t, query, "current date: unknown")
		assert.Contains(t, query, "user role: unknown")
		assert.Contains(t, query, "department: unknown")
	})

	t.Run("nil identity renders as unknown", func(t *testing.T) {
		query := ExpandQuery("prompt", nil)
		assert.Contains(t, query, "current date: unknown")
	})
}
