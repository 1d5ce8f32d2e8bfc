package ratelimit

import "strings"

// UnknownKey is the shared bucket for clients with no usable address.
const UnknownKey = "unknown"

// ClientKey picks the identity a request is counted under: the direct peer
// address, else the first X-Forwarded-For entry, else UnknownKey.
func ClientKey(remoteAddr, forwardedFor string) string {
	if ip := strings.TrimSpace(remoteAddr); ip != "" {
		return ip
	}
	if first, _, _ := strings.Cut(forwardedFor, ","); strings.TrimSpace(first) != "" {
		return strings.TrimSpace(first)
	}
	return UnknownKey
}
