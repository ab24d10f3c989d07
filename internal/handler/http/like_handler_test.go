package http_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikiasgoitom/likes/internal/domain/contract"
	"github.com/mikiasgoitom/likes/internal/domain/entity"
	handler "github.com/mikiasgoitom/likes/internal/handler/http"
	dto "github.com/mikiasgoitom/likes/internal/handler/http/dto"
	mocks "github.com/mikiasgoitom/likes/internal/handler/http/mocks"
	"github.com/mikiasgoitom/likes/internal/infrastructure/jwt"
	"github.com/mikiasgoitom/likes/internal/infrastructure/logger"
	"github.com/mikiasgoitom/likes/internal/infrastructure/metrics"
	"github.com/mikiasgoitom/likes/internal/infrastructure/validator"
	"github.com/mikiasgoitom/likes/internal/usecase"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validator.RegisterCustomValidators()
	os.Exit(m.Run())
}

const testSecret = "handler-test-secret"

func setupRouter(t *testing.T, uc *mocks.MockLikeUsecase) (*gin.Engine, string) {
	t.Helper()
	mgr := jwt.NewJWTManager(testSecret)
	token, err := mgr.GenerateAccessToken(42)
	require.NoError(t, err)

	r := gin.New()
	handler.NewRouter(uc, jwt.NewJWTService(mgr), validator.NewValidator(), logger.NewStdLogger(), metrics.New(), []string{"*"}).SetupRoutes(r)
	return r, token
}

func do(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

var blogPost = entity.TypeDescriptor{Namespace: "blog", TypeName: "post"}

func TestAddLike(t *testing.T) {
	uc := mocks.NewMockLikeUsecase()
	r, token := setupRouter(t, uc)

	w := do(r, http.MethodPost, "/api/v1/likes/blog/post/7", token)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp dto.LikeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Created)
	assert.Equal(t, int64(42), resp.UserID)
	assert.Equal(t, int64(7), resp.EntityID)
	assert.Equal(t, "blog.post", resp.EntityType)
	assert.Equal(t, entity.Object{Type: blogPost, ID: 7}, uc.LastObject)
	assert.Equal(t, int64(42), uc.LastUserID)
}

func TestAddLike_AlreadyLiked(t *testing.T) {
	uc := mocks.NewMockLikeUsecase()
	uc.MockCreated = false
	r, token := setupRouter(t, uc)

	w := do(r, http.MethodPost, "/api/v1/likes/blog/post/7", token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"created":false`)
}

func TestAddLike_RequiresAuth(t *testing.T) {
	uc := mocks.NewMockLikeUsecase()
	r, _ := setupRouter(t, uc)

	w := do(r, http.MethodPost, "/api/v1/likes/blog/post/7", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, uc.LastObject)
}

func TestAddLike_InvalidPath(t *testing.T) {
	uc := mocks.NewMockLikeUsecase()
	r, token := setupRouter(t, uc)

	for _, path := range []string{
		"/api/v1/likes/blog/post/0",
		"/api/v1/likes/blog/post/-3",
		"/api/v1/likes/blog/post/abc",
		"/api/v1/likes/bl:og/post/7",
	} {
		w := do(r, http.MethodPost, path, token)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
	assert.Nil(t, uc.LastObject)
}

func TestAddLike_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid entity", usecase.ErrInvalidEntity, http.StatusBadRequest},
		{"store unavailable", contract.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{"conflict", contract.ErrConstraintViolation, http.StatusConflict},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := mocks.NewMockLikeUsecase()
			uc.ShouldFailAddLike = true
			uc.FailWith = tt.err
			r, token := setupRouter(t, uc)

			w := do(r, http.MethodPost, "/api/v1/likes/blog/post/7", token)

			assert.Equal(t, tt.status, w.Code)
			assert.NotContains(t, w.Body.String(), "boom")
		})
	}
}

func TestRemoveLike(t *testing.T) {
	uc := mocks.NewMockLikeUsecase()
	uc.MockRemoved = false
	r, token := setupRouter(t, uc)

	w := do(r, http.MethodDelete, "/api/v1/likes/blog/post/7", token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"removed":false}`, w.Body.String())
	assert.Equal(t, int64(42), uc.LastUserID)
}

func TestHasLiked(t *testing.T) {
	uc := mocks.NewMockLikeUsecase()
	r, token := setupRouter(t, uc)

	w := do(r, http.MethodGet, "/api/v1/likes/blog/post/7/me", token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"liked":true}`, w.Body.String())
}

func TestGetLikesCount(t *testing.T) {
	uc := mocks.NewMockLikeUsecase()
	r, _ := setupRouter(t, uc)

	w := do(r, http.MethodGet, "/api/v1/likes/blog/post/7/count", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":3}`, w.Body.String())
}

func TestGetLikesCount_StoreDown(t *testing.T) {
	uc := mocks.NewMockLikeUsecase()
	uc.ShouldFailGetLikesCount = true
	uc.FailWith = contract.ErrStoreUnavailable
	r, _ := setupRouter(t, uc)

	w := do(r, http.MethodGet, "/api/v1/likes/blog/post/7/count", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGetLikers(t *testing.T) {
	uc := mocks.NewMockLikeUsecase()
	r, _ := setupRouter(t, uc)

	w := do(r, http.MethodGet, "/api/v1/likes/blog/post/7/likers", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.LikersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "alice", resp.Likers[0].Username)
}

func TestGetUserLikedIDs(t *testing.T) {
	uc := mocks.NewMockLikeUsecase()
	r, _ := setupRouter(t, uc)

	w := do(r, http.MethodGet, "/api/v1/users/5/likes/blog/post", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ids":[10,11]}`, w.Body.String())
	assert.Equal(t, int64(5), uc.LastUserID)
	assert.Equal(t, blogPost, uc.LastModel)
}

func TestMetricsEndpoint(t *testing.T) {
	uc := mocks.NewMockLikeUsecase()
	r, token := setupRouter(t, uc)

	do(r, http.MethodPost, "/api/v1/likes/blog/post/7", token)
	w := do(r, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `likes_writes_total{changed="true",op="add"} 1`)
	assert.Contains(t, w.Body.String(), `route="/api/v1/likes/:namespace/:type/:id"`)
}
