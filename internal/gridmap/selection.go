package gridmap

import (
	"math"

	"github.com/pseudograph/damselfly2/internal/memory"
)

// NoTile is the explicit "no selection" sentinel for Selection.TileIndex.
const NoTile = -1

// Selection tracks which block the operator cares about. BlockID is the
// durable identity; TileIndex is a position cache valid only against the
// snapshot it was computed from; StatusAtSelection is the block's status
// as of selection, used for the fuzzy/strict highlight comparison.
type Selection struct {
	BlockID           int64
	TileIndex         int
	StatusAtSelection int64
}

// NoneSelection is the initial state: nothing selected, and a block id
// no provider emits, so fallback-by-identity cannot accidentally match.
func NoneSelection() Selection {
	return Selection{BlockID: math.MinInt64, TileIndex: NoTile}
}

// Active reports whether a tile is currently selected.
func (s Selection) Active() bool { return s.TileIndex != NoTile }

// Select applies a click that already passed hit testing: index is a valid
// position into blocks. The click target defines the new identity, position
// cache, and status snapshot all at once.
func Select(blocks []memory.BlockRecord, index int) Selection {
	return Selection{
		BlockID:           blocks[index].BlockID,
		TileIndex:         index,
		StatusAtSelection: blocks[index].Status,
	}
}

// Reconcile maps a prior selection onto a new snapshot. It runs exactly
// once per snapshot, before painting, and is idempotent.
//
// The ladder:
//  1. the cached tile index is still in bounds: keep the position and
//     refresh the status snapshot from whatever block sits there now;
//  2. otherwise re-find the block by identity, scanning in snapshot order;
//  3. otherwise default to the first block, or to no selection when the
//     snapshot is empty.
func Reconcile(sel Selection, blocks []memory.BlockRecord) Selection {
	if len(blocks) == 0 {
		sel.TileIndex = NoTile
		return sel
	}
	if sel.TileIndex >= 0 && sel.TileIndex < len(blocks) {
		sel.StatusAtSelection = blocks[sel.TileIndex].Status
		return sel
	}
	for p, r := range blocks {
		if r.BlockID == sel.BlockID {
			sel.TileIndex = p
			sel.StatusAtSelection = r.Status
			return sel
		}
	}
	return Selection{
		BlockID:           blocks[0].BlockID,
		TileIndex:         0,
		StatusAtSelection: blocks[0].Status,
	}
}
