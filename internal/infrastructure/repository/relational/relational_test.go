package relational

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikiasgoitom/likes/internal/domain/entity"
)

func TestValidIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"id", true},
		{"posts.id", true},
		{"blog_posts.post_id", true},
		{"", false},
		{"posts.id; DROP TABLE users", false},
		{"a.b.c", false},
		{"1posts.id", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidIdentifier(tt.in), tt.in)
	}
}

func TestLikedFilter(t *testing.T) {
	cond, err := LikedFilter(entity.EntityTypeID(3), 7, "posts.id")
	require.NoError(t, err)
	assert.Contains(t, cond.SQL, "likes_like.entity_id = posts.id")
	assert.Contains(t, cond.SQL, "@like_user_id")
	assert.Equal(t, map[string]any{TypeIDArg: int64(3), UserIDArg: int64(7)}, cond.Args)

	_, err = LikedFilter(3, 7, "id) OR (1=1")
	assert.Error(t, err)
}

func TestCountProjection(t *testing.T) {
	p, err := CountProjection(entity.EntityTypeID(2), "posts.id")
	require.NoError(t, err)
	assert.Contains(t, p.SQL, "COALESCE(")
	assert.Contains(t, p.SQL, "likes_likes.entity_id = posts.id")
	assert.Equal(t, int64(2), p.Args[TypeIDArg])
}

func TestChunk(t *testing.T) {
	assert.Nil(t, Chunk(nil, 2))
	assert.Equal(t, [][]int64{{1, 2}, {3}}, Chunk([]int64{1, 2, 3}, 2))
	assert.Equal(t, [][]int64{{1, 2}}, Chunk([]int64{1, 2}, 2))
}
