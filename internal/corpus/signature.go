package corpus

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"

	"github.com/issuelab/dupscout/pkg/models"
)

// schemaVersion is folded into every signature so that a change to the
// canonical serialization invalidates all previously cached embeddings.
const schemaVersion = "v1"

// ComputeSignature fingerprints corpus content. It hashes a canonical
// serialization of the records in load order rather than raw file bytes, so
// equivalent content loaded from different sources yields the same
// signature. Two byte-identical corpora always produce the same value; any
// content change produces a different one.
func ComputeSignature(records []models.IssueRecord) string {
	h := sha256.New()
	writeField(h, schemaVersion)
	for _, r := range records {
		writeField(h, r.ID)
		writeField(h, r.Title)
		writeField(h, r.Description)
		writeField(h, r.LogExcerpt)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// writeField length-prefixes each field so that shifting content between
// adjacent fields cannot produce a colliding serialization.
func writeField(h hash.Hash, s string) {
	var lenBuf [8]byte
	n := len(s)
	for i := 0; i < 8; i++ {
		lenBuf[i] = byte(n >> (8 * i))
	}
	h.Write(lenBuf[:])
	h.Write([]byte(s))
}
