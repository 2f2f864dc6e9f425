package dedup

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"
	"time"

	// Registered decoders for the similarity scan.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/corona10/goimagehash"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/tidyfs/tidyfs/pkg/models"
)

// Similarity thresholds. Distance is the Hamming distance between
// 64-bit difference hashes.
const (
	DefaultThreshold = 5
	MaxThreshold     = 64
)

// decodableExtensions lists the image formats the similarity scan can
// fingerprint.
var decodableExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true,
	"bmp": true, "tif": true, "tiff": true, "webp": true,
}

// SimilarOptions tunes the similarity scan.
type SimilarOptions struct {
	// Threshold is the maximum Hamming distance that links two images
	Threshold int

	// Workers bounds parallel decoding goroutines
	Workers int
}

// Validate checks the threshold domain.
func (o *SimilarOptions) Validate() error {
	if o.Threshold < 0 || o.Threshold > MaxThreshold {
		return fmt.Errorf("similarity threshold must be between 0 and %d, got %d", MaxThreshold, o.Threshold)
	}
	return nil
}

// FindSimilar fingerprints decodable images and groups them by the
// transitive closure of the pairwise-within-threshold relation: two
// images both close to a third join its group even when they are not
// close to each other. Undecodable images are skipped and reported.
func FindSimilar(ctx context.Context, files []models.FileDescriptor, opts SimilarOptions) ([]models.DuplicateGroup, []models.FileFailure, error) {
	if opts.Workers < 1 {
		opts.Workers = defaultHashWorkers
	}
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}

	var candidates []models.FileDescriptor
	for i := range files {
		if decodableExtensions[files[i].Extension] {
			candidates = append(candidates, files[i])
		}
	}
	if len(candidates) < 2 {
		return nil, nil, nil
	}

	fingerprints := make([]*goimagehash.ImageHash, len(candidates))
	var failures []models.FileFailure
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for i := range candidates {
		i := i
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			fp, err := fingerprint(candidates[i].Path)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, models.FileFailure{
					Path:      candidates[i].Path,
					Reason:    err.Error(),
					Timestamp: time.Now(),
				})
				return nil
			}
			fingerprints[i] = fp
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("failed to fingerprint images: %w", err)
	}

	groups := groupByDistance(candidates, fingerprints, opts.Threshold)
	return groups, failures, nil
}

// fingerprint decodes an image and computes its 64-bit difference hash.
func fingerprint(path string) (*goimagehash.ImageHash, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	fp, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint image: %w", err)
	}
	return fp, nil
}

// groupByDistance unions every pair within threshold, then emits the
// resulting components in scan order. Distances records each member's
// distance to the group's canonical first member.
func groupByDistance(files []models.FileDescriptor, fingerprints []*goimagehash.ImageHash, threshold int) []models.DuplicateGroup {
	uf := newUnionFind(len(files))

	for i := 0; i < len(files); i++ {
		if fingerprints[i] == nil {
			continue
		}
		for j := i + 1; j < len(files); j++ {
			if fingerprints[j] == nil {
				continue
			}
			dist, err := fingerprints[i].Distance(fingerprints[j])
			if err != nil {
				continue
			}
			if dist <= threshold {
				uf.union(i, j)
			}
		}
	}

	// Collect components preserving scan order
	var order []int
	members := make(map[int][]int)
	for i := 0; i < len(files); i++ {
		if fingerprints[i] == nil {
			continue
		}
		root := uf.find(i)
		if _, seen := members[root]; !seen {
			order = append(order, root)
		}
		members[root] = append(members[root], i)
	}

	var groups []models.DuplicateGroup
	for _, root := range order {
		component := members[root]
		if len(component) < 2 {
			continue
		}

		canonical := fingerprints[component[0]]
		group := models.DuplicateGroup{
			Hash: fmt.Sprintf("%016x", canonical.GetHash()),
			Size: files[component[0]].Size,
		}
		for _, idx := range component {
			dist, err := fingerprints[idx].Distance(canonical)
			if err != nil {
				dist = 0
			}
			group.Files = append(group.Files, files[idx].Path)
			group.Distances = append(group.Distances, dist)
		}
		groups = append(groups, group)
	}
	return groups
}

// unionFind is a disjoint-set over file indexes with path compression.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	rootA, rootB := u.find(a), u.find(b)
	if rootA == rootB {
		return
	}
	// Attach the larger index under the smaller so scan order survives
	if rootA < rootB {
		u.parent[rootB] = rootA
	} else {
		u.parent[rootA] = rootB
	}
}
