package middlewares

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"agora-server/services/forum-api/internal/utils/platformerrors"
)

// BearerAuth guards an endpoint with a pre-shared bearer token. The
// comparison is constant-time.
func BearerAuth(token string, log zerolog.Logger) gin.HandlerFunc {
	expected := []byte(token)
	return func(c *gin.Context) {
		const prefix = "Bearer "
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, prefix) {
			platformerrors.WriteHTTPError(c, platformerrors.New(
				platformerrors.LayerHandler, platformerrors.ErrorTypeUnauthorized,
				"missing bearer token"), log)
			return
		}
		presented := []byte(strings.TrimPrefix(header, prefix))
		if subtle.ConstantTimeCompare(presented, expected) != 1 {
			platformerrors.WriteHTTPError(c, platformerrors.New(
				platformerrors.LayerHandler, platformerrors.ErrorTypeUnauthorized,
				"invalid bearer token"), log)
			return
		}
		c.Next()
	}
}
