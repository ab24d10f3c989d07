// Package relational holds the SQL shared by the relational like stores.
//
// Host-facing fragments use named arguments (@like_type_id, @like_user_id),
// which both pgx.NamedArgs and database/sql's sql.Named understand.
package relational

import (
	"fmt"
	"regexp"

	"github.com/mikiasgoitom/likes/internal/domain/entity"
)

const (
	TypeIDArg = "like_type_id"
	UserIDArg = "like_user_id"
)

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidIdentifier reports whether s is a plain or table-qualified column or
// table name that is safe to splice into SQL.
func ValidIdentifier(s string) bool {
	return identifierRe.MatchString(s)
}

// LikedFilter is a correlated EXISTS predicate matching host rows liked by
// userID.
func LikedFilter(typeID entity.EntityTypeID, userID int64, idColumn string) (entity.Condition, error) {
	if !ValidIdentifier(idColumn) {
		return entity.Condition{}, fmt.Errorf("invalid id column %q", idColumn)
	}
	return entity.Condition{
		SQL: fmt.Sprintf(
			"EXISTS (SELECT 1 FROM likes_like WHERE likes_like.entity_type_id = @%s AND likes_like.entity_id = %s AND likes_like.user_id = @%s)",
			TypeIDArg, idColumn, UserIDArg),
		Args: map[string]any{TypeIDArg: int64(typeID), UserIDArg: userID},
	}, nil
}

// CountProjection selects the like count of the host row at idColumn,
// coalescing a missing counter row to 0.
func CountProjection(typeID entity.EntityTypeID, idColumn string) (entity.Projection, error) {
	if !ValidIdentifier(idColumn) {
		return entity.Projection{}, fmt.Errorf("invalid id column %q", idColumn)
	}
	return entity.Projection{
		SQL: fmt.Sprintf(
			"COALESCE((SELECT likes_likes.count FROM likes_likes WHERE likes_likes.entity_type_id = @%s AND likes_likes.entity_id = %s), 0)",
			TypeIDArg, idColumn),
		Args: map[string]any{TypeIDArg: int64(typeID)},
	}, nil
}

// DriftQuery lists counters that disagree with the ledger as
// (entity_type_id, entity_id, stored, actual). Missing counter rows report
// stored = 0.
const DriftQuery = `
SELECT a.entity_type_id, a.entity_id, COALESCE(c.count, 0), a.n
FROM (
	SELECT entity_type_id, entity_id, COUNT(*) AS n
	FROM likes_like
	GROUP BY entity_type_id, entity_id
) a
LEFT JOIN likes_likes c ON c.entity_type_id = a.entity_type_id AND c.entity_id = a.entity_id
WHERE c.count IS NULL OR c.count <> a.n
UNION ALL
SELECT c.entity_type_id, c.entity_id, c.count, 0
FROM likes_likes c
WHERE c.count <> 0
  AND NOT EXISTS (
	SELECT 1 FROM likes_like l
	WHERE l.entity_type_id = c.entity_type_id AND l.entity_id = c.entity_id
  )
`

// Chunk splits ids into slices of at most size elements.
func Chunk(ids []int64, size int) [][]int64 {
	var out [][]int64
	for len(ids) > size {
		out = append(out, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}
