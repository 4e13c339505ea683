// Package tagkey derives dictionary keys from free-text status and platform
// names. Client and server share it so both sides agree on every key.
package tagkey

import "strings"

// Normalize lower-cases and trims name, collapses every run of characters
// outside [a-z0-9] into a single hyphen and strips hyphens at both ends.
// "Recruiter Contact" becomes "recruiter-contact"; a name with no ASCII
// letters or digits yields "".
//
// Normalize is idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))

	var b strings.Builder
	b.Grow(len(lower))

	pendingHyphen := false
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteByte(c)
			continue
		}
		pendingHyphen = true
	}

	return b.String()
}

// Resolve fills whichever of key and name is missing: the key is derived
// from the name, the name falls back to the key.
func Resolve(key, name string) (string, string) {
	key = strings.TrimSpace(key)
	name = strings.TrimSpace(name)
	if key == "" {
		key = Normalize(name)
	}
	if name == "" {
		name = key
	}
	return key, name
}
