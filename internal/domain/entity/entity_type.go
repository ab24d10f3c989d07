package entity

import (
	"fmt"
	"strconv"
)

// EntityTypeID is the stable identifier assigned to a host entity type.
type EntityTypeID int64

func (id EntityTypeID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// TypeDescriptor names a host entity type, e.g. {"blog", "post"}.
type TypeDescriptor struct {
	Namespace string `json:"namespace" bson:"namespace"`
	TypeName  string `json:"type_name" bson:"type_name"`
}

func (d TypeDescriptor) String() string {
	return fmt.Sprintf("%s.%s", d.Namespace, d.TypeName)
}

// EntityType is a row of the durable type registry.
type EntityType struct {
	ID EntityTypeID `json:"id" bson:"_id"`
	TypeDescriptor `bson:",inline"`
}

// Likeable is implemented by any host entity that can receive likes.
type Likeable interface {
	LikeableID() int64
	LikeableType() TypeDescriptor
}

// Hashtagged is optionally implemented by host entities that carry a hashtag.
type Hashtagged interface {
	Hashtag() string
}

// HashtagOf returns the hashtag of obj when it exposes one.
func HashtagOf(obj Likeable) (string, bool) {
	if obj == nil {
		return "", false
	}
	h, ok := obj.(Hashtagged)
	if !ok {
		return "", false
	}
	return h.Hashtag(), true
}

// Object is a minimal Likeable for callers that only know a type and an id.
type Object struct {
	Type TypeDescriptor
	ID   int64
}

func (o Object) LikeableID() int64            { return o.ID }
func (o Object) LikeableType() TypeDescriptor { return o.Type }

// EntityRef is a resolved polymorphic reference to one host entity.
type EntityRef struct {
	Type EntityTypeID `json:"entity_type" bson:"entity_type_id"`
	ID   int64        `json:"entity_id" bson:"entity_id"`
}

// LikeKey identifies a single like fact.
type LikeKey struct {
	EntityRef
	UserID int64 `json:"user_id" bson:"user_id"`
}
