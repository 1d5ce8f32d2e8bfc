// Package gate implements the optional HTTP Basic credential check placed in
// front of the profile update endpoint.
package gate

import (
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// Realm is announced in the WWW-Authenticate challenge.
const Realm = "profile update"

// Credentials configure the gate. Password is compared verbatim; PasswordHash,
// a bcrypt hash, is used instead when set.
type Credentials struct {
	Username     string
	Password     string
	PasswordHash string
}

// BasicAuth checks Authorization headers against one shared credential pair.
// The zero value is disabled and lets every request through.
type BasicAuth struct {
	username string
	password []byte
	hash     []byte
}

// NewBasicAuth builds the gate. It is enabled only when a username and one of
// password or hash are non-empty.
func NewBasicAuth(c Credentials) *BasicAuth {
	b := &BasicAuth{}
	if c.Username == "" || (c.Password == "" && c.PasswordHash == "") {
		return b
	}
	b.username = c.Username
	if c.PasswordHash != "" {
		b.hash = []byte(c.PasswordHash)
	} else {
		b.password = []byte(c.Password)
	}
	return b
}

// Enabled reports whether credentials are required.
func (b *BasicAuth) Enabled() bool {
	return b != nil && b.username != ""
}

// Check validates an Authorization header value. A disabled gate accepts
// anything.
func (b *BasicAuth) Check(header string) bool {
	if !b.Enabled() {
		return true
	}

	user, pass, ok := parseBasic(header)
	if !ok {
		return false
	}

	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(b.username)) == 1
	var passOK bool
	if b.hash != nil {
		passOK = bcrypt.CompareHashAndPassword(b.hash, []byte(pass)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(pass), b.password) == 1
	}
	return userOK && passOK
}

// Middleware answers 401 with a Basic challenge unless Check passes.
func (b *BasicAuth) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if b.Check(c.Get(fiber.HeaderAuthorization)) {
			return c.Next()
		}
		c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="`+Realm+`"`)
		return c.Status(fiber.StatusUnauthorized).SendString("Authentication required")
	}
}

// parseBasic decodes "Basic base64(user:pass)". The password may contain
// colons; only the first one separates it from the user.
func parseBasic(header string) (user, pass string, ok bool) {
	scheme, payload, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Basic") {
		return "", "", false
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return "", "", false
	}
	return strings.Cut(string(raw), ":")
}
