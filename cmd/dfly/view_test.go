package main

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pseudograph/damselfly2/internal/datasource"
	"github.com/pseudograph/damselfly2/internal/gridmap"
	"github.com/pseudograph/damselfly2/internal/memory"
)

var errTest = errors.New("synthetic failure")

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// testSource builds a source over a seeded temp database: one pool of 16
// 64B blocks with two allocations and one free.
func testSource(t *testing.T) *datasource.Source {
	t.Helper()
	s, err := datasource.NewStore(filepath.Join(t.TempDir(), "damselfly.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.AddPool(datasource.Pool{Name: "main", Start: 0x1000, Size: 1024, BlockSize: 64}); err != nil {
		t.Fatalf("AddPool: %v", err)
	}
	seed := []struct {
		kind string
		addr uint64
		size uint64
		wall uint64
	}{
		{"alloc", 0x1000, 160, 100},
		{"alloc", 0x1100, 64, 200},
		{"free", 0x1000, 160, 300},
	}
	for _, e := range seed {
		if err := s.AddEvent("main", e.kind, e.addr, e.size, "alloc_buf\npool_get", e.wall); err != nil {
			t.Fatalf("AddEvent: %v", err)
		}
	}

	src, err := datasource.NewSource(s, datasource.Options{}, nil)
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	return src
}

// testModel creates a uiModel over a seeded source, positioned at the
// newest operation with the selection reconciled (no watcher needed for
// render tests).
func testModel(t *testing.T) uiModel {
	t.Helper()
	src := testSource(t)

	m := newModel(nil, src, nil, "damselfly.db", discardLogger())
	m.pool = "main"
	m.pools = src.Pools()
	m.width = 80
	m.height = 24
	m.cursor = latestCursor(src, "main", m.mode)

	snap, err := src.Snapshot("main", m.cursor, m.mode, m.truncate)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	m.snap = snap
	m.sel = gridmap.Reconcile(m.sel, snap.Blocks)
	m.help.Width = 80
	return m
}

func TestViewIDString(t *testing.T) {
	tests := []struct {
		v    viewID
		want string
	}{
		{viewMap, "Map"},
		{viewOperations, "Operations"},
		{viewPools, "Pools"},
		{viewStats, "Stats"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestViewRendersMap(t *testing.T) {
	m := testModel(t)
	out := m.View()

	for _, want := range []string{"damselfly", "Memory Map", "Block Detail", "main"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestViewZeroWidth(t *testing.T) {
	m := testModel(t)
	m.width = 0
	if got := m.View(); got != "Loading..." {
		t.Errorf("View() = %q, want Loading...", got)
	}
}

func TestViewRendersOperations(t *testing.T) {
	m := testModel(t)
	m.activeView = viewOperations
	out := m.View()

	for _, want := range []string{"Operations", "alloc", "free", "0x00001000"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestViewRendersPools(t *testing.T) {
	m := testModel(t)
	m.activeView = viewPools
	out := m.View()

	for _, want := range []string{"Pools", "main", "1.0KiB", "64B"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestViewRendersStats(t *testing.T) {
	m := testModel(t)
	m.activeView = viewStats
	out := m.View()

	for _, want := range []string{"Usage", "peak", "Legend"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestViewRendersCallstack(t *testing.T) {
	m := testModel(t)
	// Select the first tile and deliver its history synchronously.
	m.sel = gridmap.Select(m.snap.Blocks, 0)
	cmd := m.fetchHistoryCmd()
	if cmd == nil {
		t.Fatal("expected a history fetch")
	}
	msg, ok := cmd().(historyMsg)
	if !ok {
		t.Fatal("expected historyMsg")
	}
	m.hist.Apply(msg.seq, msg.events, msg.err)

	out := m.View()
	for _, want := range []string{"History", "alloc_buf"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestTabCyclesViews(t *testing.T) {
	m := testModel(t)
	for i := 0; i < int(viewCount); i++ {
		if m.activeView != viewID(i) {
			t.Fatalf("step %d: activeView = %v", i, m.activeView)
		}
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
		m = next.(uiModel)
	}
	if m.activeView != viewMap {
		t.Errorf("tab should wrap to the map view, got %v", m.activeView)
	}
}

func TestViewShortcutKeys(t *testing.T) {
	m := testModel(t)
	tests := []struct {
		key  string
		want viewID
	}{
		{"o", viewOperations},
		{"n", viewPools},
		{"s", viewStats},
		{"d", viewMap},
	}
	for _, tt := range tests {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(tt.key)})
		m = next.(uiModel)
		if m.activeView != tt.want {
			t.Errorf("key %q: activeView = %v, want %v", tt.key, m.activeView, tt.want)
		}
	}
}

func TestQuitKey(t *testing.T) {
	m := testModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit cmd")
	}
	if msg := cmd(); msg != (tea.QuitMsg{}) {
		t.Errorf("cmd() = %v, want tea.QuitMsg", msg)
	}
}

func TestMouseClickSelectsTile(t *testing.T) {
	m := testModel(t)
	layout := m.layout()
	if layout.Columns == 0 {
		t.Fatal("layout has no columns")
	}

	// Click the second tile in the top row.
	click := tea.MouseMsg{
		X:      layout.TileSize,
		Y:      mapHeaderRows,
		Action: tea.MouseActionPress,
		Button: tea.MouseButtonLeft,
	}
	next, cmd := m.Update(click)
	m = next.(uiModel)

	if m.sel.TileIndex != 1 {
		t.Errorf("TileIndex = %d, want 1", m.sel.TileIndex)
	}
	if m.sel.BlockID != m.snap.Blocks[1].BlockID {
		t.Errorf("BlockID = %d, want %d", m.sel.BlockID, m.snap.Blocks[1].BlockID)
	}
	if cmd == nil {
		t.Error("click should issue a history fetch")
	}
}

func TestMouseClickOutsideGridIgnored(t *testing.T) {
	m := testModel(t)
	before := m.sel

	click := tea.MouseMsg{
		X:      1000,
		Y:      1000,
		Action: tea.MouseActionPress,
		Button: tea.MouseButtonLeft,
	}
	next, cmd := m.Update(click)
	m = next.(uiModel)

	if m.sel != before {
		t.Errorf("selection changed on out-of-range click: %+v", m.sel)
	}
	if cmd != nil {
		t.Error("out-of-range click should not issue a fetch")
	}
}

func TestSnapshotMsgReconcilesSelection(t *testing.T) {
	m := testModel(t)
	m.sel = gridmap.Select(m.snap.Blocks, 3)
	m.snapSeq = 7

	// The new snapshot is smaller than the cached tile index.
	shrunk := memory.Snapshot{
		CapturedAt: 1,
		Blocks: []memory.BlockRecord{
			{BlockID: 0, Status: 3, Address: 0x1000},
			{BlockID: -1, Status: 0, Address: 0x1040},
		},
	}
	next, _ := m.Update(snapshotReadyMsg{seq: 7, snap: shrunk})
	m = next.(uiModel)

	if len(m.snap.Blocks) != 2 {
		t.Fatalf("snapshot not applied: %d blocks", len(m.snap.Blocks))
	}
	if m.sel.TileIndex < 0 || m.sel.TileIndex >= len(m.snap.Blocks) {
		t.Errorf("selection not reconciled onto the new snapshot: %+v", m.sel)
	}
}

func TestStaleSnapshotDropped(t *testing.T) {
	m := testModel(t)
	before := m.snap
	m.snapSeq = 9

	stale := memory.Snapshot{Blocks: []memory.BlockRecord{{BlockID: 1, Status: 1}}}
	next, _ := m.Update(snapshotReadyMsg{seq: 3, snap: stale})
	m = next.(uiModel)

	if len(m.snap.Blocks) != len(before.Blocks) {
		t.Error("stale snapshot should be dropped")
	}
}

func TestSnapshotErrorKeepsLastGood(t *testing.T) {
	m := testModel(t)
	before := len(m.snap.Blocks)
	m.snapSeq = 2

	next, _ := m.Update(snapshotReadyMsg{seq: 2, err: errTest})
	m = next.(uiModel)

	if len(m.snap.Blocks) != before {
		t.Error("snapshot error should not clear the last good snapshot")
	}
	if m.lastErr == nil {
		t.Error("error should be surfaced in the status bar")
	}
}

func TestScrubClampsAtZero(t *testing.T) {
	m := testModel(t)
	m.cursor = 0
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("h")})
	m = next.(uiModel)

	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
	if m.follow {
		t.Error("manual scrub should leave follow mode")
	}
}

func TestScrubClampsAtNewest(t *testing.T) {
	m := testModel(t)
	limit := latestCursor(m.source, m.pool, m.mode)
	m.cursor = limit
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")})
	m = next.(uiModel)

	if m.cursor != limit {
		t.Errorf("cursor = %d, want %d", m.cursor, limit)
	}
}

func TestFollowKey(t *testing.T) {
	m := testModel(t)
	m.cursor = 0
	m.follow = false
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	m = next.(uiModel)

	if !m.follow {
		t.Error("e should enable follow mode")
	}
	if m.cursor != latestCursor(m.source, m.pool, m.mode) {
		t.Errorf("cursor = %d, want newest", m.cursor)
	}
	if cmd == nil {
		t.Error("follow should refresh the snapshot")
	}
}

func TestModeToggle(t *testing.T) {
	m := testModel(t)
	if m.mode != memory.ModeOperation {
		t.Fatalf("initial mode = %v", m.mode)
	}
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")})
	m = next.(uiModel)

	if m.mode != memory.ModeRealtime {
		t.Errorf("mode = %v, want realtime", m.mode)
	}
	if m.cursor != latestCursor(m.source, m.pool, memory.ModeRealtime) {
		t.Errorf("cursor = %d, want newest wall time", m.cursor)
	}
	if cmd == nil {
		t.Error("mode toggle should refresh the snapshot")
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	m := testModel(t)
	m.sel = gridmap.Select(m.snap.Blocks, 0)

	cmd := m.fetchHistoryCmd()
	if cmd == nil {
		t.Fatal("expected a fetch for a fresh selection")
	}
	next, _ := m.Update(cmd())
	m = next.(uiModel)

	records := m.hist.Records()
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2 (alloc + free)", len(records))
	}
	// Most recent first: the free precedes the allocation in display order.
	if records[0].Kind() != memory.EventFree || records[1].Kind() != memory.EventAllocation {
		t.Errorf("records order = [%v, %v], want [free, alloc]", records[0].Kind(), records[1].Kind())
	}

	// Same key again: no duplicate fetch.
	if cmd := m.fetchHistoryCmd(); cmd != nil {
		t.Error("unchanged key should not refetch")
	}
}

func TestWindowResize(t *testing.T) {
	m := testModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(uiModel)

	if m.width != 120 || m.height != 40 {
		t.Errorf("size = %dx%d, want 120x40", m.width, m.height)
	}
	// The layout follows the new viewport: half of it is grid surface.
	l := m.layout()
	if l.SurfaceWidth != 60 {
		t.Errorf("SurfaceWidth = %d, want 60", l.SurfaceWidth)
	}
}

func TestHumanBytes(t *testing.T) {
	tests := []struct {
		n    uint64
		want string
	}{
		{0, "0B"},
		{512, "512B"},
		{1024, "1.0KiB"},
		{1536, "1.5KiB"},
		{1 << 20, "1.0MiB"},
		{1 << 30, "1.0GiB"},
	}
	for _, tt := range tests {
		if got := humanBytes(tt.n); got != tt.want {
			t.Errorf("humanBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
