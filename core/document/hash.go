package document

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the lowercase hex SHA-256 of the exact operation text, the
// digest automatic persisted queries use to identify a document. The text is
// hashed as is: two renderings that differ only in whitespace hash apart.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
