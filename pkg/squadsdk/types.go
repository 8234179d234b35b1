package squadsdk

import "github.com/aussiebroadwan/squadgate/pkg/jwtx"

// ErrorResponse is the JSON body of every error.
type ErrorResponse struct {
	Error            string            `json:"error"`
	ErrorDescription string            `json:"error_description"`
	Fields           map[string]string `json:"fields,omitempty"`
}

// ============================================================================
// Sign-in
// ============================================================================

// SignInRequest is posted by the web tier after the identity provider has
// verified Email.
type SignInRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	InviteToken string `json:"invite_token,omitempty"`
}

// SignInResponse is returned when the gate admits the account.
type SignInResponse struct {
	Decision    string `json:"decision"`
	AccountID   string `json:"account_id"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// SignInDeniedResponse is the uniform 403 body. It never says why.
type SignInDeniedResponse struct {
	Decision         string `json:"decision"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// ============================================================================
// Invitations
// ============================================================================

type IssueInvitationRequest struct {
	TargetEmail string `json:"target_email"`
	TargetRole  string `json:"target_role"`
}

// IssueInvitationResponse carries the only copy of the invitation token.
type IssueInvitationResponse struct {
	InvitationID string `json:"invitation_id"`
	Token        string `json:"token"`
	TargetEmail  string `json:"target_email"`
	TargetRole   string `json:"target_role"`
	ExpiresAt    int64  `json:"expires_at"`
}

type ValidateInvitationRequest struct {
	Token string `json:"token"`
}

type ValidateInvitationResponse struct {
	Valid       bool   `json:"valid"`
	TargetEmail string `json:"target_email,omitempty"`
	TargetRole  string `json:"target_role,omitempty"`
	ExpiresAt   int64  `json:"expires_at,omitempty"`
}

// InvitationSummary never includes the token or its digest.
type InvitationSummary struct {
	ID          string `json:"id"`
	TargetEmail string `json:"target_email"`
	TargetRole  string `json:"target_role"`
	Status      string `json:"status"`
	IssuedBy    string `json:"issued_by"`
	IssuedAt    int64  `json:"issued_at"`
	ExpiresAt   int64  `json:"expires_at"`
}

type ListInvitationsRequest struct {
	Status string
	Email  string
	Limit  int
}

type ListInvitationsResponse struct {
	Invitations []InvitationSummary `json:"invitations"`
}

// ============================================================================
// Accounts
// ============================================================================

type Account struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	Role        string `json:"role"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

type ListAccountsResponse struct {
	Accounts []Account `json:"accounts"`
}

type ChangeRoleRequest struct {
	Role string `json:"role"`
}

// ============================================================================
// Audit
// ============================================================================

// AuditEvent fields are already redacted by the server.
type AuditEvent struct {
	ID         string            `json:"id"`
	Event      string            `json:"event"`
	Fields     map[string]string `json:"fields"`
	OccurredAt int64             `json:"occurred_at"`
}

type ListAuditEventsResponse struct {
	Events []AuditEvent `json:"events"`
}

// ============================================================================
// System
// ============================================================================

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// JWKSResponse is the public key set used to verify access tokens.
type JWKSResponse jwtx.JWKS
