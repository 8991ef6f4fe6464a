package webserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stake-plus/ideabox/src/ideas"
)

const ctxActor = "actor"

// Claims carried by web session tokens. Subject is the web user id.
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 session token for a web user.
func IssueToken(secret []byte, sub, email, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(secret)
}

// JWTMiddleware authenticates the bearer token and loads the web actor, creating it
// on first sight. The stored role is never taken from the token.
func JWTMiddleware(secret []byte, svc *ideas.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing bearer token"})
			return
		}

		var claims Claims
		tok, err := jwt.ParseWithClaims(h[7:], &claims,
			func(t *jwt.Token) (interface{}, error) { return secret, nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		)
		if err != nil || !tok.Valid || claims.Subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
			return
		}

		name := claims.Name
		if name == "" {
			name = claims.Email
		}
		actor, err := svc.EnsureActor(c.Request.Context(), ideas.Actor{
			ID:          claims.Subject,
			Origin:      ideas.OriginWeb,
			DisplayName: name,
			Email:       claims.Email,
		})
		if err != nil {
			writeError(c, err)
			c.Abort()
			return
		}

		c.Set(ctxActor, actor)
		c.Next()
	}
}

func currentActor(c *gin.Context) *ideas.Actor {
	if v, ok := c.Get(ctxActor); ok {
		if a, ok := v.(*ideas.Actor); ok {
			return a
		}
	}
	return nil
}
