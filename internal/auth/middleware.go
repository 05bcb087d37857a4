package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yahyalegrini24/AttendEase/internal/identity"
)

const (
	LoginPath = "/login"

	// AccessCookie carries the access token for requests that cannot set
	// headers, such as the abandon beacon.
	AccessCookie = "access_token"

	userKey   = "user"
	claimsKey = "claims"
)

// Decision is the outcome of the route guard.
type Decision struct {
	Allow    bool
	Redirect string
}

// Guard lets a request through when there is a user and sends it to the
// login page otherwise.
func Guard(u *identity.User) Decision {
	if u == nil {
		return Decision{Redirect: LoginPath}
	}
	return Decision{Allow: true}
}

// BearerToken is the access token of the request, from the Authorization
// header or the access cookie.
func BearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if parts := strings.SplitN(h, " ", 2); len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	if v, err := c.Cookie(AccessCookie); err == nil {
		return v
	}
	return ""
}

func wantsHTML(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}

// RequireUser resolves the user of the request through its sign-in session
// and applies Guard. Browsers are redirected to the login page; API clients
// get 401.
func RequireUser(svc *Service, contexts *identity.Registry, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user *identity.User
		claims, err := svc.Authenticate(c.Request.Context(), BearerToken(c))
		if err == nil {
			ic, err := contexts.Open(c.Request.Context(), claims.SessionID, svc.Scope(claims))
			if err != nil {
				logger.Warn("failed to resolve user", zap.String("sid", claims.SessionID), zap.Error(err))
			} else {
				user = ic.User()
			}
		}

		d := Guard(user)
		if !d.Allow {
			if wantsHTML(c) {
				c.Redirect(http.StatusFound, d.Redirect)
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Set(userKey, user)
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// CurrentUser returns the user RequireUser placed in the context.
func CurrentUser(c *gin.Context) *identity.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*identity.User)
	return u
}

func CurrentClaims(c *gin.Context) *Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	cl, _ := v.(*Claims)
	return cl
}
