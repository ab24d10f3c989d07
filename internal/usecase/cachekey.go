package usecase

import (
	"fmt"

	"github.com/mikiasgoitom/likes/internal/domain/entity"
)

// Cache key templates. Namespaces and type names never contain ':' (the
// resolver rejects them), so keys of different kinds cannot collide.
const (
	objectLikeTemplate      = "ol:%d:%d:%d"
	objectLikeCountTemplate = "olc:%d:%d"
	objTypeTemplate         = "ot:%s:%s"
)

func objectLikeKey(k entity.LikeKey) string {
	return fmt.Sprintf(objectLikeTemplate, k.Type, k.ID, k.UserID)
}

func objectLikeCountKey(r entity.EntityRef) string {
	return fmt.Sprintf(objectLikeCountTemplate, r.Type, r.ID)
}

func objTypeKey(d entity.TypeDescriptor) string {
	return fmt.Sprintf(objTypeTemplate, d.Namespace, d.TypeName)
}
