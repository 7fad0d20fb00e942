package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyFromContent(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		key1 := KeyFromContent("Q3 revenue rose 4%")
		key2 := KeyFromContent("Q3 revenue rose 4%")
		assert.Equal(t, key1, key2)
	})

	t.Run("different content different keys", func(t *testing.T) {
		key1 := KeyFromContent("quarterly report")
		key2 := KeyFromContent("annual report")
		assert.NotEqual(t, key1, key2)
	})

	t.Run("empty content uses sentinel", func(t *testing.T) {
		assert.Equal(t, EmptyContentKey, KeyFromContent(""))
	})
}

func TestCandidateContentKey(t *testing.T) {
	a := &Candidate{Id: "dir-1", Content: "shared text"}
	b := &Candidate{Id: "sem-9", Content: "shared text"}
	assert.Equal(t, a.ContentKey(), b.ContentKey())

	empty1 := &Candidate{Id: "e1"}
	empty2 := &Candidate{Id: "e2"}
	assert.Equal(t, EmptyContentKey, empty1.ContentKey())
	assert.Equal(t, empty1.ContentKey(), empty2.ContentKey())
}

func TestCandidateRankScore(t *testing.T) {
	c := &Candidate{RelevanceScore: 0.5, SourceWeight: 0.8}
	assert.InDelta(t, 0.4, c.RankScore(), 1e-9)
}

func TestValidateUserContext(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		identity := &UserContext{UserId: "user@contoso.com"}
		require.NoError(t, ValidateUserContext(identity))
	})

	t.Run("nil identity", func(t *testing.T) {
		err := ValidateUserContext(nil)
		assert.ErrorIs(t, err, ErrInvalidUserContext)
	})

	t.Run("empty user id", func(t *testing.T) {
		err := ValidateUserContext(&UserContext{})
		assert.ErrorIs(t, err, ErrEmptyUserId)
	})
}

func TestValidateCandidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, ValidateCandidate(&Candidate{Id: "doc-1"}))
	})

	t.Run("nil candidate", func(t *testing.T) {
		assert.ErrorIs(t, ValidateCandidate(nil), ErrInvalidCandidate)
	})

	t.Run("empty id", func(t *testing.T) {
		assert.ErrorIs(t, ValidateCandidate(&Candidate{}), ErrEmptyCandidateId)
	})
}

func TestSafeScore(t *testing.T) {
	assert.Equal(t, 0.75, SafeScore(0.75))
	assert.Equal(t, 0.0, SafeScore(math.NaN()))
	assert.Equal(t, 0.0, SafeScore(math.Inf(1)))
	assert.Equal(t, 0.0, SafeScore(-0.2))
}
