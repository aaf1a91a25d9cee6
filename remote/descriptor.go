package remote

import "fmt"

// Descriptor is the immutable result of leasing a remote session.
type Descriptor struct {
	Code        string
	Nonce       string
	DisplayURL  string
	RedirectURL string
	// QRCode is the PNG image of RedirectURL.
	QRCode []byte
	Status Status
}

// String redacts the nonce and the redirect URL that embeds it.
func (d Descriptor) String() string {
	return fmt.Sprintf("remote.Descriptor{code=%s nonce=%s display=%s status=%s}",
		d.Code, Redact(d.Nonce), d.DisplayURL, d.Status)
}

// Redact keeps the first four characters of a secret.
func Redact(secret string) string {
	const keep = 4
	if len(secret) <= keep {
		return "****"
	}
	return secret[:keep] + "****"
}
