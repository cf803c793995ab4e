package session

import "encoding/json"

// Status names the state the manager is in.
type Status string

const (
	// StatusUninitialized means Start has not run yet.
	StatusUninitialized Status = "uninitialized"
	// StatusResolving means an identity fetch is in flight.
	StatusResolving Status = "resolving"
	// StatusAuthenticated means the last resolution produced a user.
	StatusAuthenticated Status = "authenticated"
	// StatusUnauthenticated means the last resolution produced no user.
	// This is the normal anonymous-visitor state, not a fault.
	StatusUnauthenticated Status = "unauthenticated"
)

// Identity is the authenticated user as the backend reports it. Claims
// holds any fields beyond the known set, so new backend claims flow
// through without a client release.
type Identity struct {
	Sub       string         `json:"sub"`
	Username  string         `json:"username,omitempty"`
	Email     string         `json:"email,omitempty"`
	OrgID     string         `json:"org_id,omitempty"`
	Role      string         `json:"role,omitempty"`
	AvatarURL string         `json:"avatar_url,omitempty"`
	Claims    map[string]any `json:"-"`
}

// knownIdentityKeys are the claims mapped to struct fields; everything
// else lands in Claims.
var knownIdentityKeys = map[string]struct{}{
	"sub": {}, "username": {}, "email": {}, "org_id": {}, "role": {}, "avatar_url": {},
}

func (id *Identity) UnmarshalJSON(data []byte) error {
	type plain Identity
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*id = Identity(p)

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key := range knownIdentityKeys {
		delete(raw, key)
	}
	if len(raw) > 0 {
		id.Claims = raw
	}
	return nil
}

// Valid reports whether the identity carries a subject identifier.
// Guards treat an identity without one the same as no identity at all.
func (id *Identity) Valid() bool {
	return id != nil && id.Sub != ""
}

// Session is one client's view of the authentication state.
//
// While Loading is true, User and Err still reflect the previous resolved
// state so consumers can keep rendering it. Once Loading is false, at most
// one of User and Err is set. NeedsOrgSetup is meaningful only when User
// is present.
type Session struct {
	User          *Identity
	Loading       bool
	Err           error
	NeedsOrgSetup bool
	Status        Status
}

// Authenticated reports whether the session has a valid user.
func (s Session) Authenticated() bool {
	return s.User.Valid()
}

// meResponse is the identity endpoint's success body.
type meResponse struct {
	User          *Identity `json:"user"`
	NeedsOrgSetup bool      `json:"needs_org_setup"`
}
