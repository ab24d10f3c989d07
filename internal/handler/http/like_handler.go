package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mikiasgoitom/likes/internal/handler/http/dto"
	usecasecontract "github.com/mikiasgoitom/likes/internal/usecase/contract"
)

// WriteRecorder observes like writes. A nil recorder disables observation.
type WriteRecorder interface {
	ObserveLikeWrite(op string, changed bool)
}

type LikeHandler struct {
	likeUsecase usecasecontract.ILikeUseCase
	validator   usecasecontract.IValidator
	recorder    WriteRecorder
}

func NewLikeHandler(likeUsecase usecasecontract.ILikeUseCase, validator usecasecontract.IValidator, recorder WriteRecorder) *LikeHandler {
	return &LikeHandler{
		likeUsecase: likeUsecase,
		validator:   validator,
		recorder:    recorder,
	}
}

func (h *LikeHandler) observe(op string, changed bool) {
	if h.recorder != nil {
		h.recorder.ObserveLikeWrite(op, changed)
	}
}

func (h *LikeHandler) bindEntity(c *gin.Context) (dto.EntityURI, bool) {
	var uri dto.EntityURI
	if err := BindURI(c, &uri); err != nil {
		return uri, false
	}
	if err := h.validator.ValidateDescriptor(uri.Descriptor()); err != nil {
		ErrorHandler(c, http.StatusBadRequest, err.Error())
		return uri, false
	}
	return uri, true
}

// AddLikeHandler likes an entity on behalf of the caller. It answers 201 when
// a like was recorded and 200 when the caller already liked the entity.
func (h *LikeHandler) AddLikeHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	uri, ok := h.bindEntity(c)
	if !ok {
		return
	}

	like, created, err := h.likeUsecase.AddLike(c.Request.Context(), uri.Object(), userID)
	if err != nil {
		UseCaseErrorHandler(c, err)
		return
	}
	h.observe("add", created)
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	SuccessHandler(c, status, dto.ToLikeResponse(like, created))
}

func (h *LikeHandler) RemoveLikeHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	uri, ok := h.bindEntity(c)
	if !ok {
		return
	}

	removed, err := h.likeUsecase.RemoveLike(c.Request.Context(), uri.Object(), userID)
	if err != nil {
		UseCaseErrorHandler(c, err)
		return
	}
	h.observe("remove", removed)
	SuccessHandler(c, http.StatusOK, dto.RemoveLikeResponse{Removed: removed})
}

func (h *LikeHandler) HasLikedHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	uri, ok := h.bindEntity(c)
	if !ok {
		return
	}

	liked, err := h.likeUsecase.HasLiked(c.Request.Context(), uri.Object(), userID)
	if err != nil {
		UseCaseErrorHandler(c, err)
		return
	}
	SuccessHandler(c, http.StatusOK, dto.LikeStatusResponse{Liked: liked})
}

func (h *LikeHandler) GetLikesCountHandler(c *gin.Context) {
	uri, ok := h.bindEntity(c)
	if !ok {
		return
	}

	count, err := h.likeUsecase.GetLikesCount(c.Request.Context(), uri.Object())
	if err != nil {
		UseCaseErrorHandler(c, err)
		return
	}
	SuccessHandler(c, http.StatusOK, dto.LikesCountResponse{Count: count})
}

func (h *LikeHandler) GetLikersHandler(c *gin.Context) {
	uri, ok := h.bindEntity(c)
	if !ok {
		return
	}

	users, err := h.likeUsecase.GetLikers(c.Request.Context(), uri.Object())
	if err != nil {
		UseCaseErrorHandler(c, err)
		return
	}
	SuccessHandler(c, http.StatusOK, dto.ToLikersResponse(users))
}

// GetUserLikedIDsHandler lists the ids of the entities of one type a user likes.
func (h *LikeHandler) GetUserLikedIDsHandler(c *gin.Context) {
	var uri dto.UserLikesURI
	if err := BindURI(c, &uri); err != nil {
		return
	}
	if err := h.validator.ValidateDescriptor(uri.Descriptor()); err != nil {
		ErrorHandler(c, http.StatusBadRequest, err.Error())
		return
	}

	ids, err := h.likeUsecase.GetLikedIDs(c.Request.Context(), uri.UserID, uri.Descriptor())
	if err != nil {
		UseCaseErrorHandler(c, err)
		return
	}
	SuccessHandler(c, http.StatusOK, dto.LikedIDsResponse{IDs: ids})
}
