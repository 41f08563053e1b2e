package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/framekeep/framekeep/internal/modules/model"
	"github.com/framekeep/framekeep/internal/modules/serializer"
)

// UserAuth authenticates requests with a user api key ("Bearer fk_...").
// The key is looked up by its sha256 digest and the user is set in the
// context; the user id is also attached to the current span.
func UserAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}
		raw := strings.TrimPrefix(auth, "Bearer ")

		sum := sha256.Sum256([]byte(raw))
		lookup := hex.EncodeToString(sum[:])

		var user model.User
		if err := db.WithContext(c.Request.Context()).Where(&model.User{APIKeyHash: lookup}).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, serializer.DBErr("", err))
			return
		}

		span := trace.SpanFromContext(c.Request.Context())
		if span.SpanContext().IsValid() {
			span.SetAttributes(attribute.String("user_id", user.ID.String()))
		}

		c.Set("user", &user)
		c.Next()
	}
}
