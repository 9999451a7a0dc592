package keyfold

import "strings"

// Paths exempt from the shared-secret gate. Downloads are deliberately
// public and the probe must be reachable so clients can test a secret.
const (
	DownloadPathPrefix = "/api/download/"
	AuthProbePath      = "/api/check-auth"
)

// Authorize decides whether a request may proceed. It is a pure predicate
// over the request path and the presented secret:
//
//  1. no configured secret: open mode, everything passes
//  2. download and auth-probe paths always pass
//  3. otherwise the presented secret must equal the configured one exactly
//
// The comparison is a plain string equality, case-sensitive and untrimmed.
// It is intentionally not a constant-time compare; the single shared secret
// is a convenience gate, not an identity system.
func Authorize(requestPath, providedSecret, configuredSecret string) bool {
	if configuredSecret == "" {
		return true
	}
	if strings.HasPrefix(requestPath, DownloadPathPrefix) || requestPath == AuthProbePath {
		return true
	}
	return providedSecret == configuredSecret
}
