package usecasecontract

import "github.com/mikiasgoitom/likes/internal/domain/entity"

// ITokenService issues and verifies the access tokens that identify likers.
type ITokenService interface {
	GenerateAccessToken(userID int64) (string, error)
	ParseAccessToken(tokenStr string) (*entity.Claims, error)
}
