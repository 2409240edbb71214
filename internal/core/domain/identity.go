package domain

// SessionStatus is the lifecycle state of the client session.
type SessionStatus int

const (
	// StatusUnauthenticated means no credential is held.
	StatusUnauthenticated SessionStatus = iota
	// StatusRestoring means a persisted credential is being validated.
	StatusRestoring
	// StatusAuthenticated means the credential is valid and the identity is known.
	StatusAuthenticated
)

// String returns the status name.
func (s SessionStatus) String() string {
	switch s {
	case StatusRestoring:
		return "restoring"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Identity is the authenticated user's profile subset used for authorization.
type Identity struct {
	ID       int64  `json:"id" yaml:"id"`
	Username string `json:"username" yaml:"username"`
	Email    string `json:"email" yaml:"email"`
	IsAdmin  bool   `json:"is_admin" yaml:"is_admin"`
	IsRoot   bool   `json:"is_root" yaml:"is_root"`
}

// Privileged reports whether the identity may use admin-only views.
func (i Identity) Privileged() bool {
	return i.IsAdmin || i.IsRoot
}

// Grant is what a successful login or registration yields.
type Grant struct {
	Credential string
	Identity   Identity
}

// Session is an immutable snapshot of the session state.
//
// Invariants: Identity != nil iff Status == StatusAuthenticated;
// Credential != "" iff Status is StatusRestoring or StatusAuthenticated.
type Session struct {
	Status     SessionStatus
	Credential string
	Identity   *Identity
}

// Authenticated reports whether the snapshot holds a validated session.
func (s Session) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.Identity != nil
}

// Capability names what a guarded view requires beyond a session.
type Capability string

const (
	// CapabilityNone requires only an authenticated session.
	CapabilityNone Capability = ""
	// CapabilityAdminOnly requires IsAdmin or IsRoot.
	CapabilityAdminOnly Capability = "adminOnly"
)

// Decision is the outcome of an authorization check. Deny decisions carry
// where the navigation layer should send the user.
type Decision int

const (
	// Allow grants access.
	Allow Decision = iota
	// DenyLogin sends an unauthenticated user to the login view.
	DenyLogin
	// DenyHome sends an authenticated but unauthorized user home.
	DenyHome
)

// Allowed reports whether the decision grants access.
func (d Decision) Allowed() bool {
	return d == Allow
}

// String returns the decision name.
func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyLogin:
		return "deny:login"
	default:
		return "deny:home"
	}
}

// Authorize decides whether a session may use a capability. It is pure.
func Authorize(s Session, capability Capability) Decision {
	if !s.Authenticated() {
		return DenyLogin
	}
	if capability == CapabilityAdminOnly && !s.Identity.Privileged() {
		return DenyHome
	}
	return Allow
}
