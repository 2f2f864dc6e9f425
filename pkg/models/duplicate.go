package models

// DuplicateGroup is a set of files with identical content, or of images
// within a perceptual-similarity threshold. Groups are invocation-scoped
// and never persisted.
type DuplicateGroup struct {
	// Hash is the shared content hash (hex), or the canonical member's
	// perceptual fingerprint for similarity groups
	Hash string

	// Size is the byte size shared by exact duplicates; for similarity
	// groups it is the canonical member's size
	Size int64

	// Files lists members in scan order; the first is canonical
	Files []string

	// Distances holds, for similarity groups, each member's Hamming
	// distance to the canonical member (0 for the canonical itself).
	// Nil for exact-duplicate groups.
	Distances []int
}

// Canonical returns the kept member of the group.
func (g *DuplicateGroup) Canonical() string {
	if len(g.Files) == 0 {
		return ""
	}
	return g.Files[0]
}

// Duplicates returns the deletion candidates, every member but the first.
func (g *DuplicateGroup) Duplicates() []string {
	if len(g.Files) < 2 {
		return nil
	}
	return g.Files[1:]
}

// WastedSpace is the total size of the redundant copies.
func (g *DuplicateGroup) WastedSpace() int64 {
	if len(g.Files) < 2 {
		return 0
	}
	return g.Size * int64(len(g.Files)-1)
}
