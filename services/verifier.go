// services/verifier.go
package services

import "errors"

// TokenVerifier validates an external identity provider's ID token and
// returns the verified email address. The backend trusts the returned
// identity verbatim.
type TokenVerifier interface {
	Verify(idToken string) (email string, err error)
}

var ErrExternalLoginDisabled = errors.New("external login is not configured")

// disabledVerifier rejects all tokens. Used when no provider is configured.
type disabledVerifier struct{}

func (disabledVerifier) Verify(string) (string, error) {
	return "", ErrExternalLoginDisabled
}

func NewDisabledVerifier() TokenVerifier { return disabledVerifier{} }
