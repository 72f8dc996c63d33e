package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qorvia/roombook_backend/internal/docstore"
	"github.com/qorvia/roombook_backend/internal/identity"
	"github.com/qorvia/roombook_backend/internal/models"
)

const identityKey = "identity"

// TokenFromRequest pulls the bearer token from the session cookie, falling
// back to the Authorization header.
func TokenFromRequest(c *gin.Context) string {
	if tok, err := c.Cookie("token"); err == nil && tok != "" {
		return tok
	}
	auth := c.GetHeader("Authorization")
	if auth != "" && strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[len("Bearer "):])
	}
	return ""
}

// Authenticate verifies the request token when present and records the
// caller's identity. Requests without a valid token pass through
// unauthenticated; routes that need a caller add RequireAuth.
func Authenticate(store docstore.Store, verifier identity.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := TokenFromRequest(c)
		if tok == "" {
			c.Next()
			return
		}
		id, err := verifier.Verify(c.Request.Context(), tok)
		if err != nil {
			c.Next()
			return
		}
		// Keep the user record current on every verified request.
		doc, err := models.ToDocument(models.User{UserID: id.UserID, Email: id.Email})
		if err == nil {
			if err := store.Merge(c.Request.Context(), models.CollectionUsers, id.UserID, doc); err != nil {
				log.Printf("auth: user upsert failed: %v", err)
			}
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// RequireAuth aborts unauthenticated requests.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := Caller(c); !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// Caller returns the verified identity recorded by Authenticate.
func Caller(c *gin.Context) (identity.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return identity.Identity{}, false
	}
	id, ok := v.(identity.Identity)
	return id, ok
}
