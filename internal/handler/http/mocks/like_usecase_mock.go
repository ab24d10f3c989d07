package mocks

import (
	"context"
	"errors"
	"time"

	"github.com/mikiasgoitom/likes/internal/domain/contract"
	"github.com/mikiasgoitom/likes/internal/domain/entity"
	usecasecontract "github.com/mikiasgoitom/likes/internal/usecase/contract"
)

// MockLikeUsecase is a mock implementation of the ILikeUseCase interface
type MockLikeUsecase struct {
	// Control mock behavior
	ShouldFailAddLike       bool
	ShouldFailRemoveLike    bool
	ShouldFailHasLiked      bool
	ShouldFailGetLikesCount bool
	ShouldFailGetLikers     bool
	ShouldFailGetLiked      bool
	// FailWith overrides the generic error returned by a failing call.
	FailWith error

	// Return values
	MockCreated  bool
	MockRemoved  bool
	MockLiked    bool
	MockCount    int64
	MockLikers   []entity.User
	MockLikedIDs []int64

	// Captured arguments of the last call
	LastObject entity.Likeable
	LastUserID int64
	LastModel  entity.TypeDescriptor
}

// Ensure MockLikeUsecase implements the interface consumed by handler.NewLikeHandler
var _ usecasecontract.ILikeUseCase = (*MockLikeUsecase)(nil)

func NewMockLikeUsecase() *MockLikeUsecase {
	return &MockLikeUsecase{
		MockCreated: true,
		MockRemoved: true,
		MockLiked:   true,
		MockCount:   3,
		MockLikers: []entity.User{
			{ID: 1, Username: "alice", FullName: "Alice A."},
			{ID: 2, Username: "bob"},
		},
		MockLikedIDs: []int64{10, 11},
	}
}

func (m *MockLikeUsecase) fail(msg string) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	return errors.New(msg)
}

func (m *MockLikeUsecase) AddLike(ctx context.Context, obj entity.Likeable, userID int64) (*entity.Like, bool, error) {
	m.LastObject, m.LastUserID = obj, userID
	if m.ShouldFailAddLike {
		return nil, false, m.fail("add like failed")
	}
	return &entity.Like{
		ID:         "mock-like-id",
		EntityType: 1,
		EntityID:   obj.LikeableID(),
		UserID:     userID,
		CreatedAt:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Target:     obj,
	}, m.MockCreated, nil
}

func (m *MockLikeUsecase) RemoveLike(ctx context.Context, obj entity.Likeable, userID int64) (bool, error) {
	m.LastObject, m.LastUserID = obj, userID
	if m.ShouldFailRemoveLike {
		return false, m.fail("remove like failed")
	}
	return m.MockRemoved, nil
}

func (m *MockLikeUsecase) HasLiked(ctx context.Context, obj entity.Likeable, userID int64) (bool, error) {
	m.LastObject, m.LastUserID = obj, userID
	if m.ShouldFailHasLiked {
		return false, m.fail("has liked failed")
	}
	return m.MockLiked, nil
}

func (m *MockLikeUsecase) GetLikesCount(ctx context.Context, obj entity.Likeable) (int64, error) {
	m.LastObject = obj
	if m.ShouldFailGetLikesCount {
		return 0, m.fail("get likes count failed")
	}
	return m.MockCount, nil
}

func (m *MockLikeUsecase) GetLikers(ctx context.Context, obj entity.Likeable) ([]entity.User, error) {
	m.LastObject = obj
	if m.ShouldFailGetLikers {
		return nil, m.fail("get likers failed")
	}
	return m.MockLikers, nil
}

func (m *MockLikeUsecase) GetLiked(ctx context.Context, userID int64, model entity.TypeDescriptor, finder contract.IEntityFinder) ([]entity.Likeable, error) {
	m.LastUserID, m.LastModel = userID, model
	if m.ShouldFailGetLiked {
		return nil, m.fail("get liked failed")
	}
	objs := make([]entity.Likeable, 0, len(m.MockLikedIDs))
	for _, id := range m.MockLikedIDs {
		objs = append(objs, entity.Object{Type: model, ID: id})
	}
	return objs, nil
}

func (m *MockLikeUsecase) GetLikedIDs(ctx context.Context, userID int64, model entity.TypeDescriptor) ([]int64, error) {
	m.LastUserID, m.LastModel = userID, model
	if m.ShouldFailGetLiked {
		return nil, m.fail("get liked ids failed")
	}
	return m.MockLikedIDs, nil
}

func (m *MockLikeUsecase) AttachLikesCount(ctx context.Context, objs []entity.Likeable) ([]entity.CountedEntity, error) {
	out := make([]entity.CountedEntity, len(objs))
	for i, obj := range objs {
		out[i] = entity.CountedEntity{Likeable: obj, LikesCount: m.MockCount}
	}
	return out, nil
}
