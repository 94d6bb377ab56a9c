package dispatcher

import (
	"github.com/lattice-data/ingestor/internal/extractor"
)

const (
	mib = 1024 * 1024
)

var basePriority = map[extractor.Group]int{
	extractor.GroupRemaining: 1,
	extractor.GroupOffice:    3,
	extractor.GroupPDF:       5,
	extractor.GroupImage:     7,
	extractor.GroupArchive:   9,
	extractor.GroupEmail:     9,
	extractor.GroupUnknown:   5,
}

// Priority computes the routing priority for a file (lower = earlier),
// per the base-by-extension-group-plus-size-surcharge formula, capped
// at 10.
func Priority(name string, size int64) int {
	base, ok := basePriority[extractor.GroupFor(name)]
	if !ok {
		base = 5
	}
	if size > 10*mib {
		base += 2
	}
	if size > 50*mib {
		base++
	}
	if base > 10 {
		base = 10
	}
	return base
}

// smallFileExtensions are the extensions eligible for small-file batching.
var smallFileExtensions = map[string]bool{".txt": true, ".json": true, ".xml": true, ".csv": true}

const smallFileMaxSize = 100 * 1024

// IsSmallFile reports whether name/size qualify for the small-file batch
// group (batched up to 10 per unit, dispatched as one I/O-executor task).
func IsSmallFile(name string, size int64) bool {
	return smallFileExtensions[extractor.Ext(name)] && size < smallFileMaxSize
}

// useCPUExecutor reports whether a file must run on the CPU pool: large
// files, or PDF/image/archive formats regardless of size.
func useCPUExecutor(name string, size int64) bool {
	if size > 10*mib {
		return true
	}
	switch extractor.GroupFor(name) {
	case extractor.GroupPDF, extractor.GroupImage, extractor.GroupArchive:
		return true
	default:
		return false
	}
}
