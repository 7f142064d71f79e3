// dfly is a TUI viewer for damselfly memory traces.
//
// It renders a live, clickable map of memory-block states for each traced
// pool and lets an operator inspect the allocation/free history of any
// block at an arbitrary point in time, in either realtime (wall-clock
// tick) or historical (operation index) mode.
//
// Usage:
//
//	dfly                        # Auto-discover .damselfly/damselfly.db
//	dfly --db <path>            # Use specific trace database
//	dfly --pool <name>          # Focus on a specific pool on startup
//	dfly --json                 # Dump current state as JSON and exit
//	dfly --refresh 5s           # Set polling fallback interval
//	dfly --version              # Print version and exit
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pseudograph/damselfly2/internal/datasource"
	"github.com/pseudograph/damselfly2/internal/gridmap"
	"github.com/pseudograph/damselfly2/internal/history"
	"github.com/pseudograph/damselfly2/internal/memory"
)

// Version is set via ldflags at build time (e.g. -X main.Version=v0.1.0).
var Version = "dev"

// defaultTruncate caps how many blocks a snapshot request returns.
const defaultTruncate = 2048

// jsonOutput is the structure for --json mode.
type jsonOutput struct {
	Pools    []jsonPool    `json:"pools"`
	Snapshot jsonSnapshot  `json:"snapshot"`
	Usage    jsonUsage     `json:"usage"`
	Log      []jsonOpEntry `json:"operation_log"`
}

type jsonPool struct {
	Name      string `json:"name"`
	Start     uint64 `json:"start"`
	Size      uint64 `json:"size"`
	BlockSize uint64 `json:"block_size"`
}

type jsonSnapshot struct {
	Pool       string      `json:"pool"`
	CapturedAt uint64      `json:"captured_at"`
	Blocks     []jsonBlock `json:"blocks"`
}

type jsonBlock struct {
	BlockID int64  `json:"block_id"`
	Status  int64  `json:"status"`
	Address uint64 `json:"address"`
}

type jsonUsage struct {
	Current float64 `json:"current"`
	Max     float64 `json:"max"`
	Samples int     `json:"samples"`
}

type jsonOpEntry struct {
	Op       uint64 `json:"op"`
	Kind     string `json:"kind"`
	Address  uint64 `json:"address"`
	Size     uint64 `json:"size"`
	WallTime uint64 `json:"wall_time"`
}

func main() {
	dbPath := flag.String("db", "", "path to damselfly.db (default: auto-discover)")
	poolFlag := flag.String("pool", "", "focus on a specific pool on startup")
	cacheInterval := flag.Int("cache-interval", 1000, "operations between replay checkpoints")
	leftPadding := flag.Uint64("left-padding", 0, "bytes subtracted from each event address")
	rightPadding := flag.Uint64("right-padding", 0, "bytes added to each event size")
	tileSize := flag.Int("tile-size", 2, "rendered tile width in terminal cells")
	truncateLimit := flag.Int("truncate", defaultTruncate, "max blocks per snapshot")
	refreshDur := flag.Duration("refresh", 2*time.Second, "polling fallback interval")
	jsonMode := flag.Bool("json", false, "dump current state as JSON and exit (no TUI)")
	logPath := flag.String("log", "", "write diagnostic log to this file")
	versionFlag := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("dfly %s\n", Version)
		os.Exit(0)
	}

	if *dbPath != "" {
		os.Setenv("DAMSELFLY_DB", *dbPath)
	}

	logger, logClose, err := openLogger(*logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dfly: %v\n", err)
		os.Exit(1)
	}
	defer logClose()

	store, path, err := datasource.Open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "dfly: %v\n", err)
		os.Exit(1)
	}

	source, err := datasource.NewSource(store, datasource.Options{
		CacheInterval: *cacheInterval,
		LeftPadding:   *leftPadding,
		RightPadding:  *rightPadding,
	}, logger)
	if err != nil {
		store.Close()
		fmt.Fprintf(os.Stderr, "dfly: load trace: %v\n", err)
		os.Exit(1)
	}

	pools := source.Pools()
	pool := ""
	if len(pools) > 0 {
		pool = pools[0]
	}
	if *poolFlag != "" {
		found := false
		for _, p := range pools {
			if p == *poolFlag {
				pool = p
				found = true
				break
			}
		}
		if !found {
			store.Close()
			fmt.Fprintf(os.Stderr, "dfly: pool %q not found (have: %s)\n", *poolFlag, strings.Join(pools, ", "))
			os.Exit(1)
		}
	}

	// --json mode: dump current state, exit.
	if *jsonMode {
		out, err := buildJSONOutput(source, pool, *truncateLimit)
		store.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "dfly: %v\n", err)
			os.Exit(1)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintf(os.Stderr, "dfly: json: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	w, err := datasource.NewWatcher(path)
	if err != nil {
		store.Close()
		fmt.Fprintf(os.Stderr, "dfly: watch: %v\n", err)
		os.Exit(1)
	}

	m := newModel(store, source, w, path, logger)
	m.pool = pool
	m.pools = pools
	m.tileSize = *tileSize
	m.truncate = *truncateLimit
	m.refreshInterval = *refreshDur

	// Initial snapshot so the first frame has data, reconciled before
	// any paint. The history fetch for the reconciled selection has to
	// be issued here: Init runs on a copy of the model, so a sequence
	// number assigned there would be lost.
	if pool != "" {
		m.cursor = latestCursor(source, pool, m.mode)
		if snap, err := source.Snapshot(pool, m.cursor, m.mode, m.truncate); err == nil {
			m.snap = snap
			m.sel = gridmap.Reconcile(m.sel, snap.Blocks)
			m.initialFetch = m.fetchHistoryCmd()
		} else {
			logger.Error("initial snapshot failed", "pool", pool, "err", err)
		}
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// Feed trace change events into the TUI.
	go func() {
		for range w.Changes() {
			p.Send(dbChangedMsg{})
		}
	}()

	// Polling fallback: refresh at --refresh interval even if fsnotify
	// misses events.
	go func() {
		ticker := time.NewTicker(*refreshDur)
		defer ticker.Stop()
		for range ticker.C {
			p.Send(dbChangedMsg{})
		}
	}()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "dfly: %v\n", err)
		os.Exit(1)
	}
}

// openLogger builds the diagnostic logger. stderr belongs to the TUI, so
// without --log everything is discarded.
func openLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, nil)), func() { f.Close() }, nil
}

// latestCursor returns the newest timestamp for a pool in the given mode.
func latestCursor(source *datasource.Source, pool string, mode memory.TimeMode) uint64 {
	if mode == memory.ModeRealtime {
		wall, err := source.MaxWallTime(pool)
		if err != nil {
			return 0
		}
		return wall
	}
	maxOp, err := source.MaxOperation(pool)
	if err != nil || maxOp < 0 {
		return 0
	}
	return uint64(maxOp)
}

// buildJSONOutput collects the current state for --json mode.
func buildJSONOutput(source *datasource.Source, pool string, truncateLimit int) (jsonOutput, error) {
	var out jsonOutput
	for _, name := range source.Pools() {
		info, err := source.PoolInfo(name)
		if err != nil {
			return out, err
		}
		out.Pools = append(out.Pools, jsonPool{
			Name:      info.Name,
			Start:     info.Start,
			Size:      info.Size,
			BlockSize: info.BlockSize,
		})
	}
	if pool == "" {
		return out, nil
	}

	cursor := latestCursor(source, pool, memory.ModeOperation)
	snap, err := source.Snapshot(pool, cursor, memory.ModeOperation, truncateLimit)
	if err != nil {
		return out, err
	}
	out.Snapshot = jsonSnapshot{Pool: pool, CapturedAt: snap.CapturedAt}
	for _, b := range snap.Blocks {
		out.Snapshot.Blocks = append(out.Snapshot.Blocks, jsonBlock{
			BlockID: b.BlockID,
			Status:  b.Status,
			Address: b.Address,
		})
	}

	samples, maxUsed, err := source.UsageStats(pool)
	if err != nil {
		return out, err
	}
	out.Usage = jsonUsage{Max: maxUsed, Samples: len(samples)}
	if len(samples) > 0 {
		out.Usage.Current = samples[len(samples)-1].Used
	}

	ops, err := source.OperationLog(pool, operationLogLimit)
	if err != nil {
		return out, err
	}
	for _, ev := range ops {
		out.Log = append(out.Log, jsonOpEntry{
			Op:       ev.Timestamp,
			Kind:     ev.Kind().String(),
			Address:  ev.Address,
			Size:     ev.Size,
			WallTime: ev.WallTime,
		})
	}
	return out, nil
}

// --- Messages ---

type dbChangedMsg struct{}

// snapshotReadyMsg carries a rebuilt snapshot. seq guards against an old
// request (for a previous pool, mode, or cursor) landing after a newer one.
type snapshotReadyMsg struct {
	seq  uint64
	snap memory.Snapshot
	err  error
}

// historyMsg carries a block-history response stamped with the fetch
// sequence number assigned by the reconciler.
type historyMsg struct {
	seq    uint64
	events []memory.Event
	err    error
}

type tickMsg struct{}

// --- Key bindings ---

type keyMap struct {
	Quit    key.Binding
	Tab     key.Binding
	Refresh key.Binding
	Up      key.Binding
	Down    key.Binding
	Back    key.Binding
	Forward key.Binding
	BackBig key.Binding
	FwdBig  key.Binding
	End     key.Binding
	Mode    key.Binding
	Pool    key.Binding
	Grow    key.Binding
	Shrink  key.Binding
	Help    key.Binding
}

var keys = keyMap{
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k/up", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j/down", "down")),
	Back:    key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/left", "back in time")),
	Forward: key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/right", "forward in time")),
	BackBig: key.NewBinding(key.WithKeys("H", "shift+left"), key.WithHelp("H", "back x10")),
	FwdBig:  key.NewBinding(key.WithKeys("L", "shift+right"), key.WithHelp("L", "forward x10")),
	End:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "follow newest")),
	Mode:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "toggle time mode")),
	Pool:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "next pool")),
	Grow:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "double block size")),
	Shrink:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "halve block size")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}

// viewKeys maps single keys to views for fast navigation.
var viewKeys = map[string]viewID{
	"d": viewMap,
	"o": viewOperations,
	"n": viewPools,
	"s": viewStats,
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Back, k.Forward, k.Mode, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Refresh, k.Up, k.Down},
		{k.Back, k.Forward, k.BackBig, k.FwdBig},
		{k.End, k.Mode, k.Pool, k.Grow},
		{k.Shrink, k.Help, k.Quit},
	}
}

// contextHelp returns help text appropriate for the current view.
func contextHelp(v viewID) string {
	switch v {
	case viewMap:
		return "click: select block | h/l: scrub | m: mode | e: follow | p: pool | +/-: block size | d/o/n/s: views | ?: help | q: quit"
	case viewOperations:
		return "j/k: scroll | h/l: scrub | d/o/n/s: views | tab: next | ?: help | q: quit"
	default:
		return "j/k: scroll | d/o/n/s: views | tab: next | ?: help | q: quit"
	}
}

// --- Views ---

type viewID int

const (
	viewMap viewID = iota
	viewOperations
	viewPools
	viewStats
	viewCount // sentinel
)

func (v viewID) String() string {
	switch v {
	case viewMap:
		return "Map"
	case viewOperations:
		return "Operations"
	case viewPools:
		return "Pools"
	case viewStats:
		return "Stats"
	}
	return "?"
}

// --- Model ---

type uiModel struct {
	store   *datasource.Store
	source  *datasource.Source
	watcher *datasource.Watcher
	dbPath  string
	logger  *slog.Logger

	pool     string
	pools    []string
	mode     memory.TimeMode
	cursor   uint64 // timestamp in the active mode's semantics
	follow   bool   // track the newest operation as data streams in
	truncate int
	tileSize int

	snap    memory.Snapshot
	sel     gridmap.Selection
	snapSeq uint64
	hist    history.Reconciler

	activeView      viewID
	width           int
	height          int
	scrollPos       int
	refreshInterval time.Duration

	help         help.Model
	showHelp     bool
	initialFetch tea.Cmd

	lastRefresh time.Time
	lastErr     error
}

func newModel(store *datasource.Store, source *datasource.Source, w *datasource.Watcher, dbPath string, logger *slog.Logger) uiModel {
	return uiModel{
		store:       store,
		source:      source,
		watcher:     w,
		dbPath:      dbPath,
		logger:      logger,
		mode:        memory.ModeOperation,
		follow:      true,
		tileSize:    2,
		truncate:    defaultTruncate,
		sel:         gridmap.NoneSelection(),
		help:        help.New(),
		lastRefresh: time.Now(),
	}
}

func (m uiModel) Init() tea.Cmd {
	return tea.Batch(
		m.initialFetch,
		tickEvery(),
	)
}

func tickEvery() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m uiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKey(msg)

	case tea.MouseMsg:
		return m.updateMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case dbChangedMsg:
		// Bind the cmd first: reloadCmd advances the sequence number on m.
		cmd := m.reloadCmd()
		return m, cmd

	case snapshotReadyMsg:
		// Superseded by a newer request: drop silently.
		if msg.seq != m.snapSeq {
			break
		}
		if msg.err != nil {
			// Retain last known-good snapshot; surface the error only.
			m.lastErr = msg.err
			m.logger.Error("snapshot fetch failed", "pool", m.pool, "err", msg.err)
			break
		}
		m.lastErr = nil
		m.snap = msg.snap
		// Reconciliation runs to completion before the next paint.
		m.sel = gridmap.Reconcile(m.sel, msg.snap.Blocks)
		m.lastRefresh = time.Now()
		cmd := m.fetchHistoryCmd()
		return m, cmd

	case historyMsg:
		if applied := m.hist.Apply(msg.seq, msg.events, msg.err); applied && msg.err != nil {
			m.logger.Error("history fetch failed", "pool", m.pool, "err", msg.err)
		}

	case tickMsg:
		return m, tickEvery()
	}

	return m, nil
}

func (m uiModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Single-key view shortcuts first (always available).
	if v, ok := viewKeys[msg.String()]; ok {
		m.activeView = v
		m.scrollPos = 0
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Quit):
		if m.watcher != nil {
			m.watcher.Close()
		}
		if m.store != nil {
			m.store.Close()
		}
		return m, tea.Quit

	case key.Matches(msg, keys.Tab):
		m.activeView = (m.activeView + 1) % viewCount
		m.scrollPos = 0

	case key.Matches(msg, keys.Refresh):
		cmd := m.reloadCmd()
		return m, cmd

	case key.Matches(msg, keys.Back):
		return m.scrub(-1)
	case key.Matches(msg, keys.Forward):
		return m.scrub(+1)
	case key.Matches(msg, keys.BackBig):
		return m.scrub(-10)
	case key.Matches(msg, keys.FwdBig):
		return m.scrub(+10)

	case key.Matches(msg, keys.End):
		m.follow = true
		m.cursor = latestCursor(m.source, m.pool, m.mode)
		cmd := m.refreshSnapshotCmd()
		return m, cmd

	case key.Matches(msg, keys.Mode):
		// Switching semantics jumps to the newest data; in-flight
		// requests for the old mode are superseded by sequence number.
		if m.mode == memory.ModeOperation {
			m.mode = memory.ModeRealtime
		} else {
			m.mode = memory.ModeOperation
		}
		m.follow = true
		m.cursor = latestCursor(m.source, m.pool, m.mode)
		cmd := m.refreshSnapshotCmd()
		return m, cmd

	case key.Matches(msg, keys.Pool):
		if len(m.pools) > 1 {
			for i, p := range m.pools {
				if p == m.pool {
					m.pool = m.pools[(i+1)%len(m.pools)]
					break
				}
			}
			m.follow = true
			m.cursor = latestCursor(m.source, m.pool, m.mode)
			m.scrollPos = 0
			cmd := m.refreshSnapshotCmd()
			return m, cmd
		}

	case key.Matches(msg, keys.Grow):
		return m.changeBlockSize(2, 0)
	case key.Matches(msg, keys.Shrink):
		return m.changeBlockSize(0, 2)

	case key.Matches(msg, keys.Up):
		if m.scrollPos > 0 {
			m.scrollPos--
		}

	case key.Matches(msg, keys.Down):
		// View() clamps if we overshoot.
		maxScroll := len(m.snap.Blocks) + operationLogLimit
		if m.scrollPos < maxScroll {
			m.scrollPos++
		}

	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp
	}

	return m, nil
}

// scrub moves the time cursor by steps. In operation mode a step is one
// operation; in realtime mode a step is one wall-clock stride.
func (m uiModel) scrub(steps int) (tea.Model, tea.Cmd) {
	stride := int64(1)
	if m.mode == memory.ModeRealtime {
		stride = realtimeStride
	}
	delta := stride * int64(steps)

	cur := int64(m.cursor) + delta
	if cur < 0 {
		cur = 0
	}
	limit := int64(latestCursor(m.source, m.pool, m.mode))
	if cur > limit {
		cur = limit
	}
	m.cursor = uint64(cur)
	m.follow = false
	cmd := m.refreshSnapshotCmd()
	return m, cmd
}

// realtimeStride is the wall-tick distance one scrub step covers in
// realtime mode.
const realtimeStride = 1000

// changeBlockSize doubles or halves the active pool's tile granularity.
func (m uiModel) changeBlockSize(mul, div uint64) (tea.Model, tea.Cmd) {
	info, err := m.source.PoolInfo(m.pool)
	if err != nil {
		m.lastErr = err
		return m, nil
	}
	size := info.BlockSize
	if mul > 0 {
		size *= mul
	}
	if div > 0 && size/div > 0 {
		size /= div
	}
	if size == info.BlockSize {
		return m, nil
	}
	if err := m.source.SetBlockSize(m.pool, size); err != nil {
		m.lastErr = err
		m.logger.Error("set block size failed", "pool", m.pool, "err", err)
		return m, nil
	}
	cmd := m.refreshSnapshotCmd()
	return m, cmd
}

func (m uiModel) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.activeView != viewMap ||
		msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	layout := m.layout()
	// Translate to surface coordinates. One terminal row holds one tile
	// row, but the surface is measured in tile-sized units on both axes.
	x := msg.X
	y := (msg.Y - mapHeaderRows) * layout.TileSize
	index, ok := layout.HitTest(x, y, len(m.snap.Blocks))
	if !ok {
		// Out-of-range clicks are ignored: no state change.
		return m, nil
	}
	// The click target is already valid, so selection bypasses
	// reconciliation; the history fetch follows synchronously.
	m.sel = gridmap.Select(m.snap.Blocks, index)
	cmd := m.fetchHistoryCmd()
	return m, cmd
}

// layout derives the raster geometry for the current snapshot and
// viewport. It is recomputed on demand and never cached.
func (m uiModel) layout() gridmap.Layout {
	return gridmap.ComputeLayout(len(m.snap.Blocks), m.width, m.tileSize)
}

// reloadCmd re-reads the trace and fetches a fresh snapshot.
func (m *uiModel) reloadCmd() tea.Cmd {
	if m.follow {
		m.cursor = latestCursor(m.source, m.pool, m.mode)
	}
	m.snapSeq++
	seq := m.snapSeq
	source, pool, cursor, mode, trunc, follow := m.source, m.pool, m.cursor, m.mode, m.truncate, m.follow
	return func() tea.Msg {
		if err := source.Reload(); err != nil {
			return snapshotReadyMsg{seq: seq, err: err}
		}
		if follow {
			cursor = latestCursor(source, pool, mode)
		}
		snap, err := source.Snapshot(pool, cursor, mode, trunc)
		return snapshotReadyMsg{seq: seq, snap: snap, err: err}
	}
}

// refreshSnapshotCmd fetches a snapshot for the current dependencies
// without reloading the trace.
func (m *uiModel) refreshSnapshotCmd() tea.Cmd {
	m.snapSeq++
	seq := m.snapSeq
	source, pool, cursor, mode, trunc := m.source, m.pool, m.cursor, m.mode, m.truncate
	return func() tea.Msg {
		snap, err := source.Snapshot(pool, cursor, mode, trunc)
		return snapshotReadyMsg{seq: seq, snap: snap, err: err}
	}
}

// fetchHistoryCmd issues a history fetch for the selected block if the
// dependency triple changed. Stale responses are dropped at apply time.
func (m *uiModel) fetchHistoryCmd() tea.Cmd {
	if !m.sel.Active() || m.sel.TileIndex >= len(m.snap.Blocks) {
		return nil
	}
	k := history.Key{
		Pool:      m.pool,
		Address:   m.snap.Blocks[m.sel.TileIndex].Address,
		Timestamp: m.cursor,
		Mode:      m.mode,
	}
	seq, ok := m.hist.Begin(k)
	if !ok {
		return nil
	}
	source := m.source
	return func() tea.Msg {
		events, err := source.BlockHistory(k.Pool, k.Address, k.Timestamp, k.Mode)
		return historyMsg{seq: seq, events: events, err: err}
	}
}

// --- Styles ---

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Background(lipgloss.Color("#1E1E2E")).
			Padding(0, 1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#CDD6F4")).
			Background(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#6C7086")).
				Background(lipgloss.Color("#313244")).
				Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#89B4FA"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7086"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F38BA8")).
			Bold(true)

	allocStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F38BA8"))

	partialStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAB387"))

	freedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6E3A1"))

	unusedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#313244"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CDD6F4")).
			Background(lipgloss.Color("#7C3AED")).
			Bold(true)

	sameBlockStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F9E2AF")).
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CDD6F4")).
			Background(lipgloss.Color("#1E1E2E"))
)

// tileStyles maps render categories to styles.
var tileStyles = map[gridmap.Category]lipgloss.Style{
	gridmap.CategoryUnused:    unusedStyle,
	gridmap.CategoryFreed:     freedStyle,
	gridmap.CategoryPartial:   partialStyle,
	gridmap.CategoryAllocated: allocStyle,
	gridmap.CategorySameBlock: sameBlockStyle,
	gridmap.CategorySelected:  selectedStyle,
}
