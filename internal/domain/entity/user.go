package entity

// User is the liker projection of a host user.
type User struct {
	ID       int64  `bson:"_id" json:"id"`
	Username string `bson:"username" json:"username"`
	FullName string `bson:"full_name,omitempty" json:"full_name,omitempty"`
}
