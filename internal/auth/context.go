package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxFirebaseUID = "firebase_uid"
	CtxUserDBID    = "user_db_id"
	CtxEmail       = "email"
	CtxDisplayName = "display_name"
	CtxPhotoURL    = "photo_url"
)

// UserFirebaseUID extracts the Firebase UID set by the auth middleware.
func UserFirebaseUID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxFirebaseUID))
}

// UserDBID is the internal users.id of the caller, set by WithUser.
func UserDBID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxUserDBID))
}
