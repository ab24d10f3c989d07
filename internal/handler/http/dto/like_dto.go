package dto

import (
	"time"

	"github.com/mikiasgoitom/likes/internal/domain/entity"
)

// EntityURI addresses one host entity in the path.
type EntityURI struct {
	Namespace string `uri:"namespace" binding:"required,max=100,typename"`
	Type      string `uri:"type" binding:"required,max=100,typename"`
	ID        int64  `uri:"id" binding:"required,gt=0"`
}

func (u EntityURI) Descriptor() entity.TypeDescriptor {
	return entity.TypeDescriptor{Namespace: u.Namespace, TypeName: u.Type}
}

func (u EntityURI) Object() entity.Object {
	return entity.Object{Type: u.Descriptor(), ID: u.ID}
}

// UserLikesURI addresses the likes of one user on one entity type.
type UserLikesURI struct {
	UserID    int64  `uri:"userID" binding:"required,gt=0"`
	Namespace string `uri:"namespace" binding:"required,max=100,typename"`
	Type      string `uri:"type" binding:"required,max=100,typename"`
}

func (u UserLikesURI) Descriptor() entity.TypeDescriptor {
	return entity.TypeDescriptor{Namespace: u.Namespace, TypeName: u.Type}
}

// LikeResponse is the DTO for a like.
type LikeResponse struct {
	ID         string `json:"id"`
	EntityType string `json:"entity_type"`
	EntityID   int64  `json:"entity_id"`
	UserID     int64  `json:"user_id"`
	CreatedAt  string `json:"created_at"`
	Hashtag    string `json:"hashtag,omitempty"`
	Created    bool   `json:"created"`
}

// ToLikeResponse converts an entity.Like to a LikeResponse DTO.
func ToLikeResponse(like *entity.Like, created bool) LikeResponse {
	resp := LikeResponse{
		ID:        like.ID,
		EntityID:  like.EntityID,
		UserID:    like.UserID,
		CreatedAt: like.CreatedAt.Format(time.RFC3339),
		Created:   created,
	}
	if like.Target != nil {
		resp.EntityType = like.Target.LikeableType().String()
	}
	if tag, ok := like.Hashtag(); ok {
		resp.Hashtag = tag
	}
	return resp
}

type RemoveLikeResponse struct {
	Removed bool `json:"removed"`
}

type LikeStatusResponse struct {
	Liked bool `json:"liked"`
}

type LikesCountResponse struct {
	Count int64 `json:"count"`
}

// LikerResponse is the public projection of a user who liked an entity.
type LikerResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
}

type LikersResponse struct {
	Likers []LikerResponse `json:"likers"`
	Count  int             `json:"count"`
}

// ToLikersResponse converts users to a LikersResponse DTO.
func ToLikersResponse(users []entity.User) LikersResponse {
	likers := make([]LikerResponse, 0, len(users))
	for _, u := range users {
		likers = append(likers, LikerResponse{ID: u.ID, Username: u.Username, FullName: u.FullName})
	}
	return LikersResponse{Likers: likers, Count: len(likers)}
}

type LikedIDsResponse struct {
	IDs []int64 `json:"ids"`
}
