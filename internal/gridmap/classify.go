package gridmap

import "github.com/pseudograph/damselfly2/internal/memory"

// Category is the render category assigned to one tile.
type Category int

const (
	CategoryUnused Category = iota
	CategoryFreed
	CategoryPartial
	CategoryAllocated
	CategorySameBlock
	CategorySelected
)

func (c Category) String() string {
	switch c {
	case CategoryUnused:
		return "unused"
	case CategoryFreed:
		return "freed"
	case CategoryPartial:
		return "partial"
	case CategoryAllocated:
		return "allocated"
	case CategorySameBlock:
		return "same-block"
	case CategorySelected:
		return "selected"
	}
	return "?"
}

// Classify assigns a render category to the block at raster index i given
// the current selection. The selected tile wins outright; other tiles
// sharing the selected block's id highlight when their status matches
// under bucketsMatch and they are not unused; everything else falls back
// to its status bucket.
func Classify(i int, r memory.BlockRecord, sel Selection) Category {
	if sel.Active() {
		if i == sel.TileIndex {
			return CategorySelected
		}
		if r.BlockID == sel.BlockID && bucketsMatch(r.Status, sel.StatusAtSelection) && r.Status > 0 {
			return CategorySameBlock
		}
	}
	switch memory.BucketOf(r.Status) {
	case memory.BucketFreed:
		return CategoryFreed
	case memory.BucketPartial:
		return CategoryPartial
	case memory.BucketAllocated:
		return CategoryAllocated
	}
	return CategoryUnused
}

// bucketsMatch compares a tile's status against the status captured at
// selection time. The comparison is asymmetric: a selection in the
// allocated family (status above freed) matches any allocated-family
// status, while an unused or freed selection matches only exact equality.
func bucketsMatch(a, b int64) bool {
	if b > memory.StatusFreed {
		return a > memory.StatusFreed
	}
	return a == b
}
