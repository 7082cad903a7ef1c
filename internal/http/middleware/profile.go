package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/gigpay/internal/auth"
	"github.com/nurpe/gigpay/internal/model"
)

const principalKey = "principal"

type ProfileLoader interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*model.Profile, error)
}

// Profile resolves the caller's identity from a profile_id header or a
// Bearer access token, loads the matching profile and stores the principal
// in the request context. Requests without a resolvable profile get 401.
func Profile(parser *auth.Parser, profiles ProfileLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := resolveProfileID(c, parser)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Profile not found"})
			return
		}

		profile, err := profiles.GetProfile(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Profile not found"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "An error occured"})
			return
		}

		SetPrincipal(c, model.Principal{ID: profile.ID, Type: profile.Type})
		c.Next()
	}
}

func resolveProfileID(c *gin.Context, parser *auth.Parser) (uuid.UUID, error) {
	if raw := strings.TrimSpace(c.GetHeader("profile_id")); raw != "" {
		return uuid.Parse(raw)
	}

	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return uuid.Nil, errors.New("missing profile identity")
	}
	return parser.Parse(strings.TrimSpace(token))
}

func SetPrincipal(c *gin.Context, p model.Principal) {
	c.Set(principalKey, p)
}

func MustPrincipal(c *gin.Context) (model.Principal, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return model.Principal{}, false
	}
	principal, ok := value.(model.Principal)
	return principal, ok
}
