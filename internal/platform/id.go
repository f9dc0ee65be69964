package platform

import "crypto/rand"

const (
	digitAlphabet        = "0123456789"
	alphanumericAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	numericIDLength     = 16
	sessionSecretLength = 32
	suffixLength        = 6
)

// NewNumericID returns a 16 digit identifier used for users, workspaces and cron jobs.
func NewNumericID() string {
	return randomString(digitAlphabet, numericIDLength)
}

// NewSessionSecret returns the 32 character random part of a session token.
func NewSessionSecret() string {
	return randomString(alphanumericAlphabet, sessionSecretLength)
}

// NewSuffix returns a short random string that disambiguates ids sharing a
// timestamp.
func NewSuffix() string {
	return randomString(alphanumericAlphabet, suffixLength)
}

// randomString draws n characters uniformly from alphabet. Bytes that would
// bias the distribution are rejected.
func randomString(alphabet string, n int) string {
	limit := 256 - 256%len(alphabet)
	out := make([]byte, 0, n)
	buf := make([]byte, n*2)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand: " + err.Error())
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out)
}
