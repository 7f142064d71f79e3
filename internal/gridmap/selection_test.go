package gridmap

import (
	"testing"

	"github.com/pseudograph/damselfly2/internal/memory"
)

func testBlocks() []memory.BlockRecord {
	return []memory.BlockRecord{
		{BlockID: 10, Status: 3, Address: 0x1000},
		{BlockID: 10, Status: 2, Address: 0x1040},
		{BlockID: 11, Status: 1, Address: 0x1080},
		{BlockID: -1, Status: 0, Address: 0x10C0},
	}
}

func TestSelect(t *testing.T) {
	blocks := testBlocks()
	sel := Select(blocks, 2)
	if sel.BlockID != 11 || sel.TileIndex != 2 || sel.StatusAtSelection != 1 {
		t.Errorf("Select = %+v", sel)
	}
	if !sel.Active() {
		t.Error("selection should be active")
	}
}

func TestNoneSelectionInactive(t *testing.T) {
	if NoneSelection().Active() {
		t.Error("none selection should be inactive")
	}
}

func TestReconcileFastPath(t *testing.T) {
	blocks := testBlocks()
	sel := Select(blocks, 0)

	// Next snapshot: a different block now occupies position 0. The
	// position wins; only the status snapshot refreshes.
	next := testBlocks()
	next[0] = memory.BlockRecord{BlockID: 42, Status: 1, Address: 0x1000}

	got := Reconcile(sel, next)
	if got.TileIndex != 0 {
		t.Errorf("TileIndex = %d, want 0", got.TileIndex)
	}
	if got.BlockID != 10 {
		t.Errorf("BlockID = %d, want 10 (identity is not rewritten on the fast path)", got.BlockID)
	}
	if got.StatusAtSelection != 1 {
		t.Errorf("StatusAtSelection = %d, want 1", got.StatusAtSelection)
	}
}

func TestReconcileFallbackByIdentity(t *testing.T) {
	blocks := testBlocks()
	sel := Select(blocks, 2) // block 11 at position 2

	// Dataset shrank: position 2 is gone, block 11 now sits at position 1.
	next := []memory.BlockRecord{
		{BlockID: 7, Status: 3},
		{BlockID: 11, Status: 1},
	}

	got := Reconcile(sel, next)
	if got.TileIndex != 1 {
		t.Errorf("TileIndex = %d, want 1", got.TileIndex)
	}
	if got.BlockID != 11 {
		t.Errorf("BlockID = %d, want 11", got.BlockID)
	}
}

func TestReconcileFallbackPicksFirstMatch(t *testing.T) {
	sel := Selection{BlockID: 11, TileIndex: 99, StatusAtSelection: 1}
	next := []memory.BlockRecord{
		{BlockID: 7, Status: 3},
		{BlockID: 11, Status: 1},
		{BlockID: 11, Status: 2},
	}
	got := Reconcile(sel, next)
	if got.TileIndex != 1 {
		t.Errorf("TileIndex = %d, want 1 (first match in snapshot order)", got.TileIndex)
	}
}

func TestReconcileDefaultToFirst(t *testing.T) {
	sel := Selection{BlockID: 999, TileIndex: 50, StatusAtSelection: 3}
	next := testBlocks()[:2]

	got := Reconcile(sel, next)
	if got.TileIndex != 0 || got.BlockID != 10 || got.StatusAtSelection != 3 {
		t.Errorf("Reconcile = %+v, want first block", got)
	}
}

func TestReconcileEmptySnapshot(t *testing.T) {
	blocks := testBlocks()
	sel := Select(blocks, 1)

	got := Reconcile(sel, nil)
	if got.Active() {
		t.Error("selection should deactivate on empty snapshot")
	}
	// Identity survives so a later snapshot can re-find the block.
	if got.BlockID != 10 {
		t.Errorf("BlockID = %d, want 10", got.BlockID)
	}
}

func TestReconcileNoneOnEmptyStaysNone(t *testing.T) {
	got := Reconcile(NoneSelection(), nil)
	if got.Active() {
		t.Error("none selection on empty snapshot should stay inactive")
	}
}

func TestReconcileIdempotent(t *testing.T) {
	cases := []struct {
		name   string
		sel    Selection
		blocks []memory.BlockRecord
	}{
		{"fast path", Select(testBlocks(), 0), testBlocks()},
		{"fallback", Selection{BlockID: 11, TileIndex: 99}, testBlocks()},
		{"default", Selection{BlockID: 999, TileIndex: 99}, testBlocks()},
		{"empty", Select(testBlocks(), 0), nil},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			once := Reconcile(tt.sel, tt.blocks)
			twice := Reconcile(once, tt.blocks)
			if once != twice {
				t.Errorf("not idempotent: %+v != %+v", once, twice)
			}
		})
	}
}

func TestReconcileUnusedTileIdentityNeverMatchesNone(t *testing.T) {
	// Untouched tiles carry a provider sentinel id; the none-selection
	// sentinel must not collide with it.
	none := NoneSelection()
	blocks := testBlocks() // includes an untouched tile with id -1

	got := Reconcile(none, blocks)
	// No identity match: defaults to the first block.
	if got.TileIndex != 0 || got.BlockID != 10 {
		t.Errorf("Reconcile = %+v, want default-to-first", got)
	}
}
