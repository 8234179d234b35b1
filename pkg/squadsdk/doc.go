/*
Package squadsdk is a client for the squadgate access service.

# Client vs Session

  - Client calls the unauthenticated surface: health probes, invitation
    pre-checks, the JWKS document and, holding the callback secret, the
    sign-in gate.
  - Session carries an access token minted by sign-in and calls the
    administrative surface.

A sign-in callback in the web tier looks like:

	client := squadsdk.NewClient("https://squadgate.internal", callbackSecret)

	resp, err := client.SignIn(ctx, squadsdk.SignInRequest{
		Email:       verifiedEmail,
		InviteToken: tokenFromLink,
	})
	if errors.Is(err, squadsdk.ErrAccessRestricted) {
		// show the restricted access notice
	}

	session := client.NewSession(resp.AccessToken)
	invite, err := session.IssueInvitation(ctx, squadsdk.IssueInvitationRequest{
		TargetEmail: "bob@example.com",
		TargetRole:  "scrum_master",
	})

# Errors

Every non-2xx response is returned as *APIError. Compare with errors.Is
against the predefined values; matching is by error code only.
*/
package squadsdk
