package store

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"unicode/utf8"
)

// Match: starts with one or more / OR contains \ OR contains ..
var regexForbiddenPatterns = regexp.MustCompile(`^/+|\\+|\.\.`)

// ComputeCID returns the content identifier for the given bytes: the hex
// SHA-256 digest of exactly what goes into the store (ciphertext when the
// content is encrypted).
func ComputeCID(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ContentKey maps a CID onto its object key. Keys are sharded by the first
// two digest characters to keep listings of any single prefix bounded.
func ContentKey(cid string) string {
	return "content/" + cid[:2] + "/" + cid
}

// MultipartKey is the object key for a client-driven multipart upload. The
// CID is only known at completion, so these objects live under the upload id.
func MultipartKey(uploadID, fileName string) string {
	return "multipart/" + uploadID + "/" + fileName
}

// ValidateKey checks a key for S3 compatibility
func ValidateKey(key string) bool {
	// S3 keys must be between 1 and 1024 bytes long
	if len(key) == 0 || len(key) > 1024 {
		return false
	} else if key == "." || key == ".." {
		return false
	}

	if regexForbiddenPatterns.MatchString(key) {
		return false
	}

	// S3 keys must be valid UTF-8 strings
	return utf8.ValidString(key)
}
