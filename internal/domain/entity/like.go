package entity

import (
	"time"
)

// Like records that a user likes an entity.
type Like struct {
	ID         string       `json:"id" bson:"_id"`
	EntityType EntityTypeID `json:"entity_type" bson:"entity_type_id"`
	EntityID   int64        `json:"entity_id" bson:"entity_id"`
	UserID     int64        `json:"user_id" bson:"user_id"`
	CreatedAt  time.Time    `json:"created_at" bson:"created_at"`

	// Target is the liked host entity when the caller supplied it.
	Target Likeable `json:"-" bson:"-"`
}

// Key returns the triple the like is unique on.
func (l *Like) Key() LikeKey {
	return LikeKey{EntityRef: EntityRef{Type: l.EntityType, ID: l.EntityID}, UserID: l.UserID}
}

// Hashtag passes through the target's hashtag, if any.
func (l *Like) Hashtag() (string, bool) {
	return HashtagOf(l.Target)
}

// LikeCounter is the denormalized number of likes of one entity.
type LikeCounter struct {
	EntityType EntityTypeID `json:"entity_type" bson:"entity_type_id"`
	EntityID   int64        `json:"entity_id" bson:"entity_id"`
	Count      int64        `json:"count" bson:"count"`
}

// Ref returns the entity the counter belongs to.
func (c *LikeCounter) Ref() EntityRef {
	return EntityRef{Type: c.EntityType, ID: c.EntityID}
}

// CounterDrift describes a counter that disagreed with the ledger.
type CounterDrift struct {
	EntityRef
	Stored int64 `json:"stored"`
	Actual int64 `json:"actual"`
}

// CountedEntity is a host entity augmented with its like count.
type CountedEntity struct {
	Likeable
	LikesCount int64
}

// Hashtag passes through the entity's hashtag, if any.
func (c CountedEntity) Hashtag() (string, bool) {
	return HashtagOf(c.Likeable)
}

// Condition restricts a host entity query to the entities a user liked.
// Relational stores fill SQL and Args (named arguments); document stores
// fill IDs.
type Condition struct {
	SQL  string
	Args map[string]any
	IDs  []int64
}

// Matches reports whether id passes an id-membership condition.
func (c Condition) Matches(id int64) bool {
	for _, v := range c.IDs {
		if v == id {
			return true
		}
	}
	return false
}

// Projection is a SQL select expression with its named arguments.
type Projection struct {
	SQL  string
	Args map[string]any
}
