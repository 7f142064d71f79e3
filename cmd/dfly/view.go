package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/pseudograph/damselfly2/internal/gridmap"
	"github.com/pseudograph/damselfly2/internal/history"
	"github.com/pseudograph/damselfly2/internal/memory"
)

// mapHeaderRows is the number of terminal rows above the grid's origin in
// the map view: title, tab bar, blank, map header. Mouse hit testing
// subtracts it to get surface-relative coordinates.
const mapHeaderRows = 4

// operationLogLimit caps how many operations the log view shows.
const operationLogLimit = 128

// historyPaneLimit caps how many history entries the detail pane lists.
const historyPaneLimit = 12

func (m uiModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(m.renderTitleBar())
	b.WriteRune('\n')

	b.WriteString(m.renderTabBar())
	b.WriteRune('\n')
	b.WriteRune('\n')

	contentHeight := m.height - 5 // title + tabs + status + padding
	if m.showHelp {
		contentHeight -= 3
	}

	var content string
	if m.activeView == viewMap {
		// Map view: grid left, block detail right. The grid never
		// scrolls, so its origin stays fixed for mouse hit testing.
		leftWidth := m.width / 2
		rightWidth := m.width - leftWidth - 3

		left := m.renderGrid()
		right := m.renderBlockDetail(rightWidth)
		content = renderSplitPane(left, right, leftWidth, rightWidth, contentHeight)
	} else {
		switch m.activeView {
		case viewOperations:
			content = m.renderOperations()
		case viewPools:
			content = m.renderPools()
		case viewStats:
			content = m.renderStats()
		}

		// Apply scroll using a local variable; View() is a value
		// receiver so mutating m.scrollPos here would be dead code.
		lines := strings.Split(content, "\n")
		scrollPos := m.scrollPos
		if scrollPos >= len(lines) {
			scrollPos = max(0, len(lines)-1)
		}
		if scrollPos > 0 && scrollPos < len(lines) {
			lines = lines[scrollPos:]
		}
		if len(lines) > contentHeight {
			lines = lines[:contentHeight]
		}
		content = strings.Join(lines, "\n")
	}

	// Truncate each line to terminal width so content doesn't wrap
	// on resize. Uses ANSI-aware width measurement.
	content = truncateLines(content, m.width)

	b.WriteString(content)

	// Pad to fill screen.
	rendered := strings.Count(b.String(), "\n")
	for rendered < m.height-2 {
		b.WriteRune('\n')
		rendered++
	}

	if m.showHelp {
		b.WriteString(m.help.View(keys))
	} else {
		b.WriteString(m.renderStatusBar())
	}

	return b.String()
}

func (m uiModel) renderTitleBar() string {
	title := titleStyle.Render("damselfly")
	stats := dimStyle.Render(fmt.Sprintf(
		"%d pools | %d blocks | op %d",
		len(m.pools), len(m.snap.Blocks), m.snap.CapturedAt,
	))
	gap := strings.Repeat(" ", max(0, m.width-lipgloss.Width(title)-lipgloss.Width(stats)-2))
	return title + gap + stats
}

func (m uiModel) renderTabBar() string {
	var tabs []string
	for i := viewID(0); i < viewCount; i++ {
		if i == m.activeView {
			tabs = append(tabs, tabActiveStyle.Render(i.String()))
		} else {
			tabs = append(tabs, tabInactiveStyle.Render(i.String()))
		}
	}
	return strings.Join(tabs, " ")
}

func (m uiModel) renderStatusBar() string {
	ago := time.Since(m.lastRefresh).Truncate(time.Second)
	mode := m.mode.String()
	follow := ""
	if m.follow {
		follow = " follow"
	}
	left := fmt.Sprintf(" %s", contextHelp(m.activeView))
	right := fmt.Sprintf("%s @%d%s | pool %s | refreshed %s ago ", mode, m.cursor, follow, m.pool, ago)
	if m.lastErr != nil {
		right = errStyle.Render("error: "+truncate(m.lastErr.Error(), 40)) + " | " + right
	}
	gap := strings.Repeat(" ", max(0, m.width-lipgloss.Width(left)-lipgloss.Width(right)))
	return statusBarStyle.Render(left + gap + right)
}

// --- Map view ---

// renderGrid paints the block raster. One tile is tileSize cells wide and
// one row high; the layout engine decides how many tiles fit per row.
func (m uiModel) renderGrid() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Memory Map"))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %s | %d blocks", m.pool, len(m.snap.Blocks))))
	b.WriteRune('\n')

	layout := m.layout()
	if layout.Columns == 0 || len(m.snap.Blocks) == 0 {
		b.WriteString(dimStyle.Render("  (no blocks)"))
		b.WriteRune('\n')
		return b.String()
	}

	tile := strings.Repeat("█", layout.TileSize)
	selTile := strings.Repeat("▓", layout.TileSize)
	for row := 0; row < layout.Rows; row++ {
		for col := 0; col < layout.Columns; col++ {
			index := row*layout.Columns + col
			if index >= len(m.snap.Blocks) {
				break
			}
			cat := gridmap.Classify(index, m.snap.Blocks[index], m.sel)
			if cat == gridmap.CategorySelected {
				b.WriteString(tileStyles[cat].Render(selTile))
			} else {
				b.WriteString(tileStyles[cat].Render(tile))
			}
		}
		b.WriteRune('\n')
	}
	return b.String()
}

// renderBlockDetail shows the selected block and its event history, most
// recent first.
func (m uiModel) renderBlockDetail(width int) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Block Detail"))
	b.WriteRune('\n')

	if !m.sel.Active() || m.sel.TileIndex >= len(m.snap.Blocks) {
		b.WriteString(dimStyle.Render("  click a tile to inspect it"))
		b.WriteRune('\n')
		return b.String()
	}

	r := m.snap.Blocks[m.sel.TileIndex]
	b.WriteString(fmt.Sprintf("  tile    %d\n", m.sel.TileIndex))
	b.WriteString(fmt.Sprintf("  address %s\n", formatAddr(r.Address)))
	if r.BlockID >= 0 {
		b.WriteString(fmt.Sprintf("  block   op %d\n", r.BlockID))
	} else {
		b.WriteString(dimStyle.Render("  block   (untouched)"))
		b.WriteRune('\n')
	}
	b.WriteString(fmt.Sprintf("  state   %s\n", bucketLabel(r.Status)))
	b.WriteRune('\n')

	b.WriteString(headerStyle.Render("History"))
	if m.hist.Phase() == history.PhaseFetching {
		b.WriteString(dimStyle.Render("  fetching..."))
	}
	b.WriteRune('\n')
	if err := m.hist.Err(); err != nil {
		b.WriteString(errStyle.Render("  " + truncate(err.Error(), width-4)))
		b.WriteRune('\n')
	}

	records := m.hist.Records()
	if len(records) == 0 {
		b.WriteString(dimStyle.Render("  (no events)"))
		b.WriteRune('\n')
		return b.String()
	}
	shown := records
	if len(shown) > historyPaneLimit {
		shown = shown[:historyPaneLimit]
	}
	for _, ev := range shown {
		b.WriteString("  " + eventLine(ev) + "\n")
	}
	if len(records) > len(shown) {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  ... %d more", len(records)-len(shown))))
		b.WriteRune('\n')
	}

	// Callstack of the most recent event.
	if cs := records[0].Callstack; cs != "" {
		b.WriteRune('\n')
		b.WriteString(headerStyle.Render("Callstack"))
		b.WriteRune('\n')
		lines := wrapText(cs, width-4)
		if len(lines) > 10 {
			lines = lines[:10]
		}
		for _, l := range lines {
			b.WriteString(dimStyle.Render("  " + l))
			b.WriteRune('\n')
		}
	}
	return b.String()
}

// --- Operations view ---

func (m uiModel) renderOperations() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Operations"))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %s, newest first", m.pool)))
	b.WriteRune('\n')
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %-8s %-6s %-14s %-10s %s",
		"Op", "Kind", "Address", "Size", "Wall")))
	b.WriteRune('\n')

	ops, err := m.source.OperationLog(m.pool, operationLogLimit)
	if err != nil {
		b.WriteString(errStyle.Render("  " + err.Error()))
		b.WriteRune('\n')
		return b.String()
	}
	if len(ops) == 0 {
		b.WriteString(dimStyle.Render("  (no operations)"))
		b.WriteRune('\n')
		return b.String()
	}
	for _, ev := range ops {
		marker := "  "
		if ev.Timestamp == m.snap.CapturedAt {
			marker = headerStyle.Render("▸ ")
		}
		b.WriteString(fmt.Sprintf("%s%-8d %-6s %-14s %-10s %d\n",
			marker, ev.Timestamp, kindLabel(ev.Kind()),
			formatAddr(ev.Address), humanBytes(ev.Size), ev.WallTime))
	}
	return b.String()
}

// --- Pools view ---

func (m uiModel) renderPools() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Pools"))
	b.WriteRune('\n')
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %-16s %-14s %-10s %-10s %s",
		"Name", "Start", "Size", "Block", "Ops")))
	b.WriteRune('\n')

	for _, name := range m.pools {
		info, err := m.source.PoolInfo(name)
		if err != nil {
			continue
		}
		ops := 0
		if maxOp, err := m.source.MaxOperation(name); err == nil {
			ops = maxOp + 1
		}
		marker := "  "
		if name == m.pool {
			marker = headerStyle.Render("▸ ")
		}
		b.WriteString(fmt.Sprintf("%s%-16s %-14s %-10s %-10s %d\n",
			marker, info.Name, formatAddr(info.Start),
			humanBytes(info.Size), humanBytes(info.BlockSize), ops))
	}
	if len(m.pools) == 0 {
		b.WriteString(dimStyle.Render("  (no pools registered)"))
		b.WriteRune('\n')
	}
	return b.String()
}

// --- Stats view ---

// sparkRunes maps a usage level in [0,8) to a block character.
var sparkRunes = []rune("▁▂▃▄▅▆▇█")

func (m uiModel) renderStats() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Usage"))
	b.WriteString(dimStyle.Render("  " + m.pool))
	b.WriteRune('\n')

	samples, maxUsed, err := m.source.UsageStats(m.pool)
	if err != nil {
		b.WriteString(errStyle.Render("  " + err.Error()))
		b.WriteRune('\n')
		return b.String()
	}
	if len(samples) == 0 {
		b.WriteString(dimStyle.Render("  (no samples)"))
		b.WriteRune('\n')
		return b.String()
	}

	current := samples[len(samples)-1].Used
	b.WriteString(fmt.Sprintf("  current %.1f tiles | peak %.1f tiles | %d operations\n",
		current, maxUsed, len(samples)))
	b.WriteRune('\n')

	// Sparkline over the last screenful of samples, scaled to the peak.
	width := max(8, m.width-4)
	shown := samples
	if len(shown) > width {
		shown = shown[len(shown)-width:]
	}
	var spark strings.Builder
	for _, s := range shown {
		level := 0
		if maxUsed > 0 {
			level = int(s.Used / maxUsed * float64(len(sparkRunes)-1))
		}
		if level < 0 {
			level = 0
		}
		if level >= len(sparkRunes) {
			level = len(sparkRunes) - 1
		}
		spark.WriteRune(sparkRunes[level])
	}
	b.WriteString("  " + allocStyle.Render(spark.String()))
	b.WriteRune('\n')
	b.WriteString(dimStyle.Render(fmt.Sprintf("  ops %d..%d",
		shown[0].OpIndex, shown[len(shown)-1].OpIndex)))
	b.WriteRune('\n')

	b.WriteRune('\n')
	b.WriteString(headerStyle.Render("Legend"))
	b.WriteRune('\n')
	b.WriteString("  " + allocStyle.Render("██") + " allocated   " +
		partialStyle.Render("██") + " partial   " +
		freedStyle.Render("██") + " freed   " +
		unusedStyle.Render("██") + " unused\n")
	b.WriteString("  " + selectedStyle.Render("▓▓") + " selected    " +
		sameBlockStyle.Render("██") + " same block\n")
	return b.String()
}

// --- Split-pane rendering ---

// renderSplitPane renders two content panes side by side with a vertical
// separator.
func renderSplitPane(left, right string, leftWidth, rightWidth, maxHeight int) string {
	leftLines := strings.Split(left, "\n")
	rightLines := strings.Split(right, "\n")

	maxLines := max(len(leftLines), len(rightLines))
	if maxLines > maxHeight {
		maxLines = maxHeight
	}
	for len(leftLines) < maxLines {
		leftLines = append(leftLines, "")
	}
	for len(rightLines) < maxLines {
		rightLines = append(rightLines, "")
	}

	sep := dimStyle.Render("│")
	var b strings.Builder
	for i := 0; i < maxLines; i++ {
		l := padOrTruncate(leftLines[i], leftWidth)
		b.WriteString(l)
		b.WriteString(" ")
		b.WriteString(sep)
		b.WriteString(" ")
		b.WriteString(rightLines[i])
		b.WriteRune('\n')
	}
	return b.String()
}

// padOrTruncate pads or truncates a styled line to the target visible
// width, ANSI-aware.
func padOrTruncate(styled string, width int) string {
	visWidth := lipgloss.Width(styled)
	if visWidth > width {
		return ansi.Truncate(styled, width, "")
	}
	return styled + strings.Repeat(" ", width-visWidth)
}

// --- Helpers ---

// truncateLines truncates each line in content to at most width visible
// characters, preserving ANSI escape codes. This prevents terminal line
// wrapping when the window is resized narrower.
func truncateLines(content string, width int) string {
	if width <= 0 {
		return content
	}
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if lipgloss.Width(line) > width {
			lines[i] = ansi.Truncate(line, width, "")
		}
	}
	return strings.Join(lines, "\n")
}

// wrapText breaks s into lines of at most width characters, splitting on
// word boundaries where possible. If a single word exceeds width it is
// hard-split. Embedded newlines are respected.
func wrapText(s string, width int) []string {
	if width <= 0 {
		width = 80
	}
	paragraphs := strings.Split(s, "\n")
	var lines []string
	for _, para := range paragraphs {
		lines = append(lines, wrapParagraph(para, width)...)
	}
	return lines
}

func wrapParagraph(s string, width int) []string {
	if len(s) <= width {
		return []string{s}
	}
	var lines []string
	for len(s) > 0 {
		if len(s) <= width {
			lines = append(lines, s)
			break
		}
		cut := -1
		for i := width; i > 0; i-- {
			if s[i] == ' ' {
				cut = i
				break
			}
		}
		if cut <= 0 {
			cut = width
			lines = append(lines, s[:cut])
			s = s[cut:]
		} else {
			lines = append(lines, s[:cut])
			s = s[cut+1:]
		}
	}
	return lines
}

func truncate(s string, n int) string {
	if n <= 3 || len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// eventLine formats one history entry: "op 42  alloc 0x00001000 64B".
func eventLine(ev memory.Event) string {
	return fmt.Sprintf("%s %s %s %s",
		dimStyle.Render(fmt.Sprintf("op %-6d", ev.Timestamp)),
		kindLabel(ev.Kind()),
		formatAddr(ev.Address),
		humanBytes(ev.Size))
}

func kindLabel(k memory.EventKind) string {
	switch k {
	case memory.EventAllocation:
		return allocStyle.Render("alloc")
	case memory.EventFree:
		return freedStyle.Render("free")
	}
	return dimStyle.Render("?")
}

// bucketLabel renders a status code as its styled bucket name.
func bucketLabel(status int64) string {
	switch memory.BucketOf(status) {
	case memory.BucketAllocated:
		return allocStyle.Render("allocated")
	case memory.BucketPartial:
		return partialStyle.Render("partially allocated")
	case memory.BucketFreed:
		return freedStyle.Render("freed")
	}
	return dimStyle.Render("unused")
}

func formatAddr(a uint64) string {
	return fmt.Sprintf("0x%08X", a)
}

func humanBytes(n uint64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.1fGiB", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1fMiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fKiB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%dB", n)
}
