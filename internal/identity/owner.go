// Package identity holds the verified caller identity that flows from the
// authenticator into every note operation.
package identity

// Owner is an authenticated user. Values are built by the auth package from
// verified token claims and passed explicitly into note operations; request
// payloads never produce one.
type Owner struct {
	ID    string
	Email string
	Name  string
}

// IsZero reports whether o carries no user id.
func (o Owner) IsZero() bool {
	return o.ID == ""
}
