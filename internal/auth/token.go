// Package auth provides demo-grade bearer credential encoding and decoding.
//
// The demo token is a reversible, unsigned concatenation and is NOT secure.
// It is a documented placeholder for a future signed scheme (e.g. JWT); the
// Codec interface isolates it so the swap will not touch the middleware.
package auth

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Role is the closed set of roles a demo credential can carry.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole maps a raw role string to a known Role.
// Unknown values fall back to RoleUser.
func ParseRole(s string) Role {
	if Role(s) == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// Credential is the decoded form of a bearer token. It is derived transiently
// on every request and never persisted.
type Credential struct {
	Username string
	UserID   string
	Role     Role
	IssuedAt int64 // unix milliseconds
}

// Codec encodes and decodes bearer credentials. Decode signals an invalid or
// expired credential with ok=false rather than an error: the caller treats it
// identically to "no credential provided".
type Codec interface {
	Encode(username, userID string, role Role) string
	Decode(token string) (Credential, bool)
}

const (
	tokenPrefix = "demo_"
	delimiter   = "_"
	maxTokenAge = 24 * time.Hour
)

// DemoCodec implements Codec with the unsigned demo token format:
//
//	demo_<username>_<userID>_<role>_<issuedAtMillis>
//
// Username must not contain the delimiter; userID may (IDs like
// usr_demo_user_001 do), so Decode takes the role and timestamp from the end
// and re-joins the middle fields as the userID.
type DemoCodec struct {
	// now is overridable for tests; defaults to time.Now.
	now func() time.Time
}

// NewDemoCodec creates a DemoCodec using the wall clock.
func NewDemoCodec() *DemoCodec {
	return &DemoCodec{now: time.Now}
}

// Encode builds a demo token for the given identity, stamped with the current
// time in unix milliseconds.
func (c *DemoCodec) Encode(username, userID string, role Role) string {
	return fmt.Sprintf("%s%s_%s_%s_%d", tokenPrefix, username, userID, role, c.now().UnixMilli())
}

// Decode validates and parses a demo token. ok is false when the prefix is
// missing, there are fewer than five delimited fields, the timestamp does not
// parse, or the token is older than 24 hours.
func (c *DemoCodec) Decode(token string) (Credential, bool) {
	if !strings.HasPrefix(token, tokenPrefix) {
		return Credential{}, false
	}

	parts := strings.Split(token, delimiter)
	if len(parts) < 5 {
		return Credential{}, false
	}

	issuedAt, err := strconv.ParseInt(parts[len(parts)-1], 10, 64)
	if err != nil {
		return Credential{}, false
	}
	if c.now().UnixMilli()-issuedAt > maxTokenAge.Milliseconds() {
		return Credential{}, false
	}

	return Credential{
		Username: parts[1],
		UserID:   strings.Join(parts[2:len(parts)-2], delimiter),
		Role:     ParseRole(parts[len(parts)-2]),
		IssuedAt: issuedAt,
	}, true
}
