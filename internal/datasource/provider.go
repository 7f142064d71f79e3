package datasource

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/pseudograph/damselfly2/internal/memory"
)

// Provider is the query contract the viewer depends on.
type Provider interface {
	// Snapshot renders a pool's block states as of (timestamp, mode),
	// truncated to at most truncateLimit blocks (0 = no limit).
	Snapshot(pool string, timestamp uint64, mode memory.TimeMode, truncateLimit int) (memory.Snapshot, error)
	// Pools returns the ordered pool names.
	Pools() []string
	// BlockHistory returns the allocation/free events covering address,
	// bounded by (timestamp, mode), in ascending chronological order.
	BlockHistory(pool string, address uint64, timestamp uint64, mode memory.TimeMode) ([]memory.Event, error)
	// SetBlockSize changes a pool's tile granularity.
	SetBlockSize(pool string, blockSize uint64) error
}

// Options tunes the replay engine.
type Options struct {
	// CacheInterval is the number of operations between replay
	// checkpoints. Scrubbing replays at most this many events.
	CacheInterval int
	// LeftPadding shifts every event address down by this many bytes;
	// RightPadding widens every event size. Both compensate for tracing
	// instrumentation padding and are applied at load.
	LeftPadding  uint64
	RightPadding uint64
}

const defaultCacheInterval = 1000

// allocStatusSpread is how many distinct allocated status codes the
// provider emits. Values above StatusPartial all mean "allocated"; the
// variation only separates neighbouring blocks visually.
const allocStatusSpread = 5

// unusedBlock is the block id of a tile no operation has touched.
const unusedBlock int64 = -1

// tileState is one raster tile during replay.
type tileState struct {
	blockID int64
	status  int64
}

// checkpoint holds the tile state after the first opCount events applied.
type checkpoint struct {
	opCount int
	tiles   []tileState
}

// UsageSample is one point of the usage graph: tiles counted after the
// operation at the same index applied (allocated 1, partial 0.5).
type UsageSample struct {
	OpIndex int
	Used    float64
}

// poolState is the in-memory replay state for one pool.
type poolState struct {
	pool    Pool
	events  []memory.Event // Timestamp resampled to the operation index
	cache   []checkpoint
	usage   []UsageSample
	maxUsed float64
}

// Source is the SQLite-backed Provider. It loads each pool's event log
// into memory and replays it on demand, checkpointing every CacheInterval
// operations. Reload rebuilds everything from the store; the viewer calls
// it when the watcher signals a change.
//
// Queries run from background fetches while Reload runs from the change
// watcher, so all access goes through mu.
type Source struct {
	store  *Store
	opts   Options
	logger *slog.Logger

	mu    sync.RWMutex
	order []string
	pools map[string]*poolState
}

// NewSource builds a Source over an open store and performs the initial
// load. logger may be nil.
func NewSource(store *Store, opts Options, logger *slog.Logger) (*Source, error) {
	if opts.CacheInterval <= 0 {
		opts.CacheInterval = defaultCacheInterval
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Source{store: store, opts: opts, logger: logger}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads every pool's event log and rebuilds the replay caches.
func (s *Source) Reload() error {
	pools, err := s.store.ListPools()
	if err != nil {
		return err
	}
	order := make([]string, 0, len(pools))
	states := make(map[string]*poolState, len(pools))
	for _, p := range pools {
		events := s.loadPoolEvents(p)
		ps := &poolState{pool: p, events: events}
		ps.rebuild(s.opts.CacheInterval)
		order = append(order, p.Name)
		states[p.Name] = ps
	}
	s.mu.Lock()
	s.order = order
	s.pools = states
	s.mu.Unlock()
	return nil
}

// loadPoolEvents decodes a pool's rows into events, resampling logical
// timestamps to the operation index and applying padding compensation.
// Rows that fail integrity checks become Unknown placeholders.
func (s *Source) loadPoolEvents(p Pool) []memory.Event {
	rows, err := s.store.loadEvents(p.Name)
	if err != nil {
		s.logger.Error("load events failed", "pool", p.Name, "err", err)
		return nil
	}
	events := make([]memory.Event, 0, len(rows))
	for i, r := range rows {
		fields := memory.EventFields{
			Address:   r.Address,
			Size:      r.Size + s.opts.RightPadding,
			Callstack: r.Callstack,
			Timestamp: uint64(i),
			WallTime:  r.WallTime,
		}
		if fields.Address >= s.opts.LeftPadding {
			fields.Address -= s.opts.LeftPadding
		}

		var alloc, free *memory.EventFields
		switch r.Kind {
		case "alloc":
			alloc = &fields
		case "free":
			free = &fields
		}
		ev, err := memory.DecodeEvent(alloc, free)
		if err != nil {
			s.logger.Warn("event integrity violation", "pool", p.Name, "row", r.ID, "kind", r.Kind, "err", err)
			ev = memory.NewUnknown(fields)
		}
		events = append(events, ev)
	}
	return events
}

// Pools returns the ordered pool names.
func (s *Source) Pools() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// PoolInfo returns a pool's registration record.
func (s *Source) PoolInfo(pool string) (Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ps, err := s.poolState(pool)
	if err != nil {
		return Pool{}, err
	}
	return ps.pool, nil
}

// Snapshot implements Provider.
func (s *Source) Snapshot(pool string, timestamp uint64, mode memory.TimeMode, truncateLimit int) (memory.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ps, err := s.poolState(pool)
	if err != nil {
		return memory.Snapshot{}, err
	}
	resolved := ps.resolveIndex(timestamp, mode)
	tiles := ps.stateAt(resolved, s.opts.CacheInterval)

	n := len(tiles)
	if truncateLimit > 0 && truncateLimit < n {
		n = truncateLimit
	}
	blocks := make([]memory.BlockRecord, n)
	for i := 0; i < n; i++ {
		blocks[i] = memory.BlockRecord{
			BlockID: tiles[i].blockID,
			Status:  tiles[i].status,
			Address: ps.pool.Start + uint64(i)*ps.pool.BlockSize,
		}
	}
	captured := uint64(0)
	if resolved >= 0 {
		captured = uint64(resolved)
	}
	return memory.Snapshot{CapturedAt: captured, Blocks: blocks}, nil
}

// BlockHistory implements Provider. Events are returned ascending; the
// detail pane reverses for display.
func (s *Source) BlockHistory(pool string, address uint64, timestamp uint64, mode memory.TimeMode) ([]memory.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ps, err := s.poolState(pool)
	if err != nil {
		return nil, err
	}
	resolved := ps.resolveIndex(timestamp, mode)

	var out []memory.Event
	for i, ev := range ps.events {
		if i > resolved {
			break
		}
		if ev.Kind() == memory.EventUnknown {
			continue
		}
		span := ev.Size
		if span < ps.pool.BlockSize {
			span = ps.pool.BlockSize
		}
		if address >= ev.Address && address < ev.Address+span {
			out = append(out, ev)
		}
	}
	return out, nil
}

// SetBlockSize implements Provider. The affected pool's caches are
// rebuilt at the new granularity.
func (s *Source) SetBlockSize(pool string, blockSize uint64) error {
	if blockSize == 0 {
		return errors.New("block size must be positive")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ps, err := s.poolState(pool)
	if err != nil {
		return err
	}
	if err := s.store.SetBlockSize(pool, blockSize); err != nil {
		return err
	}
	s.logger.Info("block size changed", "pool", pool, "block_size", blockSize)
	ps.pool.BlockSize = blockSize
	ps.rebuild(s.opts.CacheInterval)
	return nil
}

// OperationLog returns the newest limit operations, most recent first.
func (s *Source) OperationLog(pool string, limit int) ([]memory.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ps, err := s.poolState(pool)
	if err != nil {
		return nil, err
	}
	n := len(ps.events)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]memory.Event, limit)
	for i := 0; i < limit; i++ {
		out[i] = ps.events[n-1-i]
	}
	return out, nil
}

// UsageStats returns a pool's per-operation usage samples and the maximum
// observed usage.
func (s *Source) UsageStats(pool string) ([]UsageSample, float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ps, err := s.poolState(pool)
	if err != nil {
		return nil, 0, err
	}
	return ps.usage, ps.maxUsed, nil
}

// MaxOperation returns a pool's highest operation index, or -1 when the
// pool has no events.
func (s *Source) MaxOperation(pool string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ps, err := s.poolState(pool)
	if err != nil {
		return 0, err
	}
	return len(ps.events) - 1, nil
}

// MaxWallTime returns the wall time of a pool's last event.
func (s *Source) MaxWallTime(pool string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ps, err := s.poolState(pool)
	if err != nil {
		return 0, err
	}
	if len(ps.events) == 0 {
		return 0, nil
	}
	return ps.events[len(ps.events)-1].WallTime, nil
}

// poolState looks up a pool. Callers hold mu.
func (s *Source) poolState(pool string) (*poolState, error) {
	ps, ok := s.pools[pool]
	if !ok {
		return nil, errors.Newf("pool %s not found", pool)
	}
	return ps, nil
}

// --- replay ---

func (p *poolState) tileCount() int {
	if p.pool.BlockSize == 0 {
		return 0
	}
	return int((p.pool.Size + p.pool.BlockSize - 1) / p.pool.BlockSize)
}

// resolveIndex maps (timestamp, mode) to the index of the last operation
// included in the view. -1 means no operation applies.
func (p *poolState) resolveIndex(timestamp uint64, mode memory.TimeMode) int {
	if len(p.events) == 0 {
		return -1
	}
	if mode == memory.ModeOperation {
		if timestamp >= uint64(len(p.events)) {
			return len(p.events) - 1
		}
		return int(timestamp)
	}
	// Realtime: the last event at or before the wall tick.
	n := sort.Search(len(p.events), func(i int) bool {
		return p.events[i].WallTime > timestamp
	})
	return n - 1
}

// rebuild replays the whole log once, checkpointing every interval
// operations and accumulating the usage samples.
func (p *poolState) rebuild(interval int) {
	n := p.tileCount()
	tiles := make([]tileState, n)
	for i := range tiles {
		tiles[i] = tileState{blockID: unusedBlock, status: memory.StatusUnused}
	}

	p.cache = p.cache[:0]
	p.usage = make([]UsageSample, 0, len(p.events))
	p.maxUsed = 0

	var used float64
	for i, ev := range p.events {
		if i%interval == 0 {
			p.cache = append(p.cache, checkpoint{opCount: i, tiles: cloneTiles(tiles)})
		}
		used += p.applyEvent(tiles, ev, i)
		p.usage = append(p.usage, UsageSample{OpIndex: i, Used: used})
		if used > p.maxUsed {
			p.maxUsed = used
		}
	}
	if len(p.cache) == 0 {
		p.cache = append(p.cache, checkpoint{opCount: 0, tiles: cloneTiles(tiles)})
	}
}

// stateAt returns the tile state after applying events[0..resolved]. The
// nearest checkpoint at or before the target bounds the replay cost.
func (p *poolState) stateAt(resolved, interval int) []tileState {
	applied := resolved + 1
	if applied > len(p.events) {
		applied = len(p.events)
	}
	if applied < 0 {
		applied = 0
	}

	ci := 0
	if interval > 0 {
		ci = applied / interval
	}
	if ci >= len(p.cache) {
		ci = len(p.cache) - 1
	}
	if ci < 0 {
		// No events, no checkpoints: everything unused.
		tiles := make([]tileState, p.tileCount())
		for i := range tiles {
			tiles[i] = tileState{blockID: unusedBlock, status: memory.StatusUnused}
		}
		return tiles
	}

	cp := p.cache[ci]
	tiles := cloneTiles(cp.tiles)
	for i := cp.opCount; i < applied; i++ {
		p.applyEvent(tiles, p.events[i], i)
	}
	return tiles
}

// applyEvent paints one operation onto the tile raster and returns the
// usage delta it caused. An allocation marks its covered full tiles
// allocated and a trailing remainder tile partially allocated; a free
// marks the covered tiles freed. Spans outside the pool are clipped.
func (p *poolState) applyEvent(tiles []tileState, ev memory.Event, opIndex int) float64 {
	if ev.Kind() == memory.EventUnknown {
		return 0
	}
	if ev.Address < p.pool.Start || ev.Address >= p.pool.Start+p.pool.Size {
		return 0
	}
	first := int((ev.Address - p.pool.Start) / p.pool.BlockSize)

	size := ev.Size
	if size == 0 {
		size = p.pool.BlockSize
	}
	fullTiles := int(size / p.pool.BlockSize)
	remainder := size%p.pool.BlockSize != 0

	var delta float64
	paint := func(idx int, st tileState) {
		if idx < 0 || idx >= len(tiles) {
			return
		}
		delta -= tileWeight(tiles[idx].status)
		tiles[idx] = st
		delta += tileWeight(st.status)
	}

	switch ev.Kind() {
	case memory.EventAllocation:
		status := memory.StatusPartial + 1 + int64(opIndex)%allocStatusSpread
		for b := 0; b < fullTiles; b++ {
			paint(first+b, tileState{blockID: int64(opIndex), status: status})
		}
		if remainder {
			paint(first+fullTiles, tileState{blockID: int64(opIndex), status: memory.StatusPartial})
		}
	case memory.EventFree:
		covered := fullTiles
		if remainder {
			covered++
		}
		for b := 0; b < covered; b++ {
			paint(first+b, tileState{blockID: int64(opIndex), status: memory.StatusFreed})
		}
	}
	return delta
}

// tileWeight is the usage contribution of one tile: allocated counts
// fully, partially allocated counts half.
func tileWeight(status int64) float64 {
	switch memory.BucketOf(status) {
	case memory.BucketAllocated:
		return 1
	case memory.BucketPartial:
		return 0.5
	}
	return 0
}

func cloneTiles(tiles []tileState) []tileState {
	out := make([]tileState, len(tiles))
	copy(out, tiles)
	return out
}
