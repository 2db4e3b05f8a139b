// Package fingerprint computes deterministic content fingerprints for quest
// records. A fingerprint changes exactly when the narratable content changes,
// which is what drives the snapshot diff.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/dgnsrekt/questvox/internal/catalog"
)

// Size is the length of a fingerprint in hex characters. 64 bits of a sha256
// digest; collisions are a non-issue at catalog scale and fingerprints are
// never compared for security purposes.
const Size = 16

// Field separator for the hashed concatenation. An ASCII unit separator does
// not occur in natural quest text, so "a|b" vs "a"+"|b" style ambiguity
// cannot produce equal hashes.
const sep = "\x1f"

// Compute returns the fingerprint over the four narratable text fields.
// Missing and empty fields hash identically: both normalize to "".
func Compute(title, description, objectives, completion string) string {
	joined := normalize(title) + sep +
		normalize(description) + sep +
		normalize(objectives) + sep +
		normalize(completion)

	sum := sha256.Sum256([]byte(joined))
	return hex.EncodeToString(sum[:])[:Size]
}

// ForQuest fingerprints a quest record.
func ForQuest(q catalog.QuestRecord) string {
	return Compute(q.Title, q.Description, q.Objectives, q.CompletionText)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
