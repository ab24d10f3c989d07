package jwt

import (
	"github.com/mikiasgoitom/likes/internal/domain/entity"
	usecasecontract "github.com/mikiasgoitom/likes/internal/usecase/contract"
)

// JWTServiceAdapter adapts JWTManager to the ITokenService port.
type JWTServiceAdapter struct {
	mgr *JWTManager
}

// NewJWTService creates a new ITokenService from JWTManager
func NewJWTService(mgr *JWTManager) usecasecontract.ITokenService {
	return &JWTServiceAdapter{mgr: mgr}
}

// GenerateAccessToken issues an access token for a user.
func (a *JWTServiceAdapter) GenerateAccessToken(userID int64) (string, error) {
	return a.mgr.GenerateAccessToken(userID)
}

// ParseAccessToken validates an access token and returns Claims.
func (a *JWTServiceAdapter) ParseAccessToken(tokenStr string) (*entity.Claims, error) {
	customClaims, err := a.mgr.VerifyToken(tokenStr)
	if err != nil {
		return nil, err
	}
	return &entity.Claims{
		UserID:           customClaims.UserID,
		RegisteredClaims: customClaims.RegisteredClaims,
	}, nil
}
