package squadsdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Session calls the bearer-authenticated endpoints. Access tokens are short
// lived and not refreshable; sign in again when calls return ErrInvalidToken.
type Session struct {
	client      *Client
	accessToken string
}

func (s *Session) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	return s.client.do(ctx, method, path, body, map[string]string{
		"Authorization": "Bearer " + s.accessToken,
	})
}

// Me returns the account behind the session.
func (s *Session) Me(ctx context.Context) (*Account, error) {
	resp, err := s.do(ctx, http.MethodGet, "/v1/me", nil)
	if err != nil {
		return nil, err
	}

	var out Account
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// IssueInvitation requires an admin or scrum master session.
func (s *Session) IssueInvitation(ctx context.Context, req IssueInvitationRequest) (*IssueInvitationResponse, error) {
	resp, err := s.do(ctx, http.MethodPost, "/v1/invitations", req)
	if err != nil {
		return nil, err
	}

	var out IssueInvitationResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) ListInvitations(ctx context.Context, req ListInvitationsRequest) (*ListInvitationsResponse, error) {
	q := url.Values{}
	if req.Status != "" {
		q.Set("status", req.Status)
	}
	if req.Email != "" {
		q.Set("email", req.Email)
	}
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}
	path := "/v1/invitations"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	resp, err := s.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var out ListInvitationsResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) RevokeInvitation(ctx context.Context, invitationID string) error {
	resp, err := s.do(ctx, http.MethodPost, "/v1/invitations/"+url.PathEscape(invitationID)+"/revoke", nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// ListAccounts requires an admin session.
func (s *Session) ListAccounts(ctx context.Context) (*ListAccountsResponse, error) {
	resp, err := s.do(ctx, http.MethodGet, "/v1/accounts", nil)
	if err != nil {
		return nil, err
	}

	var out ListAccountsResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangeRole requires an admin session.
func (s *Session) ChangeRole(ctx context.Context, accountID, role string) (*Account, error) {
	resp, err := s.do(ctx, http.MethodPatch, "/v1/accounts/"+url.PathEscape(accountID)+"/role", ChangeRoleRequest{Role: role})
	if err != nil {
		return nil, err
	}

	var out Account
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAuditEvents requires an admin session.
func (s *Session) ListAuditEvents(ctx context.Context, limit int) (*ListAuditEventsResponse, error) {
	path := "/v1/audit"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	resp, err := s.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var out ListAuditEventsResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
