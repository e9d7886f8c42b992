// Package video abstracts the external video-credential collaborator.
// The registry only needs "give me a join token for (room, identity)";
// anything from a hosted provider to the local JWT issuer fits behind
// CredentialProvider.
package video

import (
	"crypto/rand"
	"encoding/hex"
)

type CredentialProvider interface {
	IssueCredential(roomName, identity string) (string, error)
}

// FallbackToken generates a locally random opaque token. Used when the
// configured provider is unavailable: issuance has already been
// committed at that point and must not fail.
func FallbackToken() string {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		// rand.Read on crypto/rand does not fail in practice; keep the
		// signature simple and degrade to a fixed marker if it ever does.
		return "fallback-token"
	}
	return "vt_" + hex.EncodeToString(buf)
}
