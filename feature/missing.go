package feature

import (
	"fmt"
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
)

// MissingReport summarizes which objects of a batch lack which measurements.
//
// It is the batch-level companion to Extractor.MissingFeatures: a pre-flight
// scan callers run before handing feature vectors to a classifier. Per
// missing measurement name it records the set of object indices affected,
// as a compressed bitmap.
type MissingReport struct {
	total   int
	byName  map[string]*roaring.Bitmap
	objects *roaring.Bitmap
}

// ScanMissing runs ex.MissingFeatures over every object and aggregates the
// results by measurement name. Object indices refer to positions in objects.
func ScanMissing(img ImageData, ex Extractor, objects []Object) *MissingReport {
	r := &MissingReport{
		total:   len(objects),
		byName:  make(map[string]*roaring.Bitmap),
		objects: roaring.New(),
	}

	for i, obj := range objects {
		for _, name := range ex.MissingFeatures(img, obj) {
			bm, ok := r.byName[name]
			if !ok {
				bm = roaring.New()
				r.byName[name] = bm
			}
			bm.Add(uint32(i))
			r.objects.Add(uint32(i))
		}
	}
	return r
}

// Empty reports whether no object was missing any measurement.
func (r *MissingReport) Empty() bool { return len(r.byName) == 0 }

// Names returns the missing measurement names, sorted.
func (r *MissingReport) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns how many objects lack the named measurement.
func (r *MissingReport) Count(name string) uint64 {
	bm, ok := r.byName[name]
	if !ok {
		return 0
	}
	return bm.GetCardinality()
}

// Objects returns the bitmap of object indices missing the named
// measurement, or nil if none are.
func (r *MissingReport) Objects(name string) *roaring.Bitmap {
	bm, ok := r.byName[name]
	if !ok {
		return nil
	}
	return bm.Clone()
}

// AffectedObjects returns how many objects lack at least one measurement.
func (r *MissingReport) AffectedObjects() uint64 {
	return r.objects.GetCardinality()
}

// TotalObjects returns the number of objects scanned.
func (r *MissingReport) TotalObjects() int { return r.total }

// String renders a short warning summary suitable for logs.
func (r *MissingReport) String() string {
	if r.Empty() {
		return "no missing measurements"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d/%d objects missing measurements:", r.AffectedObjects(), r.total)
	for _, name := range r.Names() {
		fmt.Fprintf(&sb, " %s(%d)", name, r.byName[name].GetCardinality())
	}
	return sb.String()
}
