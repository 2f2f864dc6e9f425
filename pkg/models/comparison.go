package models

// IdentityCheck selects how two files are tested for identical content.
// The Deduplicate strategy and duplicate verification use it.
type IdentityCheck string

const (
	// CheckHash compares SHA-256 digests
	CheckHash IdentityCheck = "hash"
	// CheckMD5 compares MD5 digests (faster, weaker)
	CheckMD5 IdentityCheck = "md5"
	// CheckBinary compares byte-by-byte
	CheckBinary IdentityCheck = "binary"
)

// ValidIdentityChecks maps every accepted identity check name.
var ValidIdentityChecks = map[IdentityCheck]bool{
	CheckHash:   true,
	CheckMD5:    true,
	CheckBinary: true,
}
