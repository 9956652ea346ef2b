package monitor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/rtop/internal/layout"
	"github.com/rileyhilliard/rtop/internal/store"
	"github.com/rileyhilliard/rtop/internal/util"
)

// legendMinWidth is the narrowest graph widget that still gets a legend.
const legendMinWidth = 40

// widgetView is what a widget contributes to its box.
type widgetView struct {
	Title  string
	Footer string
	Lines  []string
}

// renderWidget builds the content of one widget for an inner area of
// w x h cells. outerH is the box height including borders.
func renderWidget(id layout.WidgetID, st *store.Store, ws *WidgetState, w, h, outerH int, focused bool, theme *Theme) widgetView {
	if c, ok := widgetCategories[id]; ok && !st.Supports(c) {
		return widgetView{Title: widgetTitles[id], Lines: []string{theme.mutedStyle().Render("not supported")}}
	}
	switch id {
	case WidgetCPU:
		return cpuWidget(st, ws, w, h, theme)
	case WidgetMem:
		return memWidget(st, ws, w, h, theme)
	case WidgetNet:
		return netWidget(st, ws, w, h, theme)
	case WidgetDisk:
		t := diskTable(st)
		return widgetView{Title: widgetTitles[id], Lines: renderTable(t, w, h, outerH, ws, focused, theme)}
	case WidgetTemp:
		t := tempTable(st, theme)
		if len(t.Rows) == 0 {
			return widgetView{Title: widgetTitles[id], Lines: []string{theme.mutedStyle().Render("no sensors")}}
		}
		return widgetView{Title: widgetTitles[id], Lines: renderTable(t, w, h, outerH, ws, focused, theme)}
	case WidgetProc:
		return procWidget(st, ws, w, h, outerH, focused, theme)
	}
	return widgetView{Title: string(id)}
}

// lastValues returns up to n newest values of a channel.
func lastValues(st *store.Store, channel string, n int) []float64 {
	ts := st.Series(channel)
	if ts == nil {
		return nil
	}
	return ts.Last(n)
}

// splitLegend divides w between a graph and a legend column.
func splitLegend(ws *WidgetState, w, legendW int) (graphW, legend int) {
	if !ws.Expanded || w < legendMinWidth {
		return w, 0
	}
	return w - legendW - 1, legendW
}

// joinColumns places a legend to the right of the graph lines.
func joinColumns(graph []string, graphW int, legend []string, legendW int) []string {
	if legendW == 0 {
		return graph
	}
	out := make([]string, len(graph))
	for i, g := range graph {
		var l string
		if i < len(legend) {
			l = legend[i]
		}
		out[i] = align(g, graphW, false) + " " + align(l, legendW, false)
	}
	return out
}

func cpuWidget(st *store.Store, ws *WidgetState, w, h int, theme *Theme) widgetView {
	v := widgetView{Title: widgetTitles[WidgetCPU]}
	cpu := st.CPU()
	if cpu == nil {
		v.Lines = []string{theme.mutedStyle().Render("waiting for data")}
		return v
	}
	v.Title = fmt.Sprintf("CPU %s", util.FormatPercent(cpu.Percent))
	v.Footer = fmt.Sprintf("load %.2f %.2f %.2f", cpu.LoadAvg[0], cpu.LoadAvg[1], cpu.LoadAvg[2])

	graphW, legendW := splitLegend(ws, w, 12)
	g := Graph{
		Data:  lastValues(st, store.ChannelCPU, graphW*2),
		Max:   100,
		Color: theme.MetricColor,
	}
	graph := g.Render(graphW, h)

	var legend []string
	if legendW > 0 {
		for i, p := range cpu.PerCore {
			label := fmt.Sprintf("C%-3d", i)
			legend = append(legend, theme.labelStyle().Render(label)+
				theme.fg(theme.MetricColor(p)).Render(fmt.Sprintf("%6.1f%%", p)))
		}
		if len(legend) > h {
			legend = legend[:max(h, 0)]
		}
	}
	v.Lines = joinColumns(graph, graphW, legend, legendW)
	return v
}

func memWidget(st *store.Store, ws *WidgetState, w, h int, theme *Theme) widgetView {
	v := widgetView{Title: widgetTitles[WidgetMem]}
	mem := st.Memory()
	if mem == nil {
		v.Lines = []string{theme.mutedStyle().Render("waiting for data")}
		return v
	}
	v.Title = fmt.Sprintf("Memory %s", util.FormatPercent(mem.UsedPercent()))

	gauge := func(label string, used, total uint64, pct float64) string {
		text := fmt.Sprintf(" %s/%s", util.Compact(util.FormatBytes(used)), util.Compact(util.FormatBytes(total)))
		barW := w - lipgloss.Width(label) - lipgloss.Width(text) - 1
		if barW < 4 {
			return theme.labelStyle().Render(label) + text
		}
		return theme.labelStyle().Render(label) + " " + theme.Gauge(barW, pct) + text
	}

	var header []string
	header = append(header, gauge("RAM ", mem.UsedBytes, mem.TotalBytes, mem.UsedPercent()))
	hasSwap := mem.SwapTotal > 0
	if hasSwap {
		header = append(header, gauge("Swap", mem.SwapUsed, mem.SwapTotal, mem.SwapPercent()))
	}
	if len(header) >= h {
		v.Lines = header[:max(h, 0)]
		return v
	}

	graphH := h - len(header)
	ramH := graphH
	if ws.Expanded && hasSwap && graphH >= 2 {
		ramH = graphH - graphH/2
	}
	v.Lines = append(header, Graph{
		Data: lastValues(st, store.ChannelMem, w*2),
		Max:  100,
		Base: theme.Graph,
	}.Render(w, ramH)...)
	if ramH < graphH {
		v.Lines = append(v.Lines, Graph{
			Data: lastValues(st, store.ChannelSwap, w*2),
			Max:  100,
			Base: theme.GraphAlt,
		}.Render(w, graphH-ramH)...)
	}
	return v
}

// busiestInterface picks the non-loopback interface with the most traffic,
// falling back to the first one.
func busiestInterface(nets []store.NetRate) (store.NetRate, bool) {
	var best store.NetRate
	found := false
	for _, n := range nets {
		if n.IsLoopback() && len(nets) > 1 {
			continue
		}
		if !found || n.RxBytes+n.TxBytes > best.RxBytes+best.TxBytes {
			best, found = n, true
		}
	}
	return best, found
}

func netWidget(st *store.Store, ws *WidgetState, w, h int, theme *Theme) widgetView {
	v := widgetView{Title: widgetTitles[WidgetNet]}
	nets := st.Interfaces()
	primary, ok := busiestInterface(nets)
	if !ok {
		v.Lines = []string{theme.mutedStyle().Render("no interfaces")}
		return v
	}
	v.Title = "Network " + primary.Name
	v.Footer = fmt.Sprintf("rx %s tx %s", util.FormatRate(primary.RxRate), util.FormatRate(primary.TxRate))

	graphW, legendW := splitLegend(ws, w, 24)
	rx := lastValues(st, store.NetChannel(primary.Name, false), graphW*2)
	tx := lastValues(st, store.NetChannel(primary.Name, true), graphW*2)
	// Both halves share a scale so their heights compare.
	top := max(maxOf(rx), maxOf(tx))

	rxH := h - h/2
	graph := Graph{Data: rx, Max: top, Base: theme.Graph}.Render(graphW, rxH)
	graph = append(graph, Graph{Data: tx, Max: top, Base: theme.GraphAlt}.Render(graphW, h-rxH)...)

	var legend []string
	if legendW > 0 {
		for _, n := range nets {
			legend = append(legend,
				theme.labelStyle().Render(n.Name),
				fmt.Sprintf(" %s %s", theme.fg(theme.Graph).Render("↓"), util.FormatRate(n.RxRate)),
				fmt.Sprintf(" %s %s", theme.fg(theme.GraphAlt).Render("↑"), util.FormatRate(n.TxRate)))
		}
	}
	v.Lines = joinColumns(graph, graphW, legend, legendW)
	return v
}

var diskColumns = []tableColumn{
	{Title: "Mount"},
	{Title: "Used", Right: true},
	{Title: "Total", Right: true},
	{Title: "Use%", Right: true},
	{Title: "Read/s", Right: true},
	{Title: "Write/s", Right: true},
	{Title: "FS"},
}

func diskTable(st *store.Store) table {
	t := table{Columns: diskColumns}
	for _, d := range st.Disks() {
		t.Rows = append(t.Rows, tableRow{Cells: []string{
			d.Mount,
			util.Compact(util.FormatBytes(d.UsedBytes)),
			util.Compact(util.FormatBytes(d.TotalBytes)),
			util.FormatPercent(d.UsedPercent()),
			util.Compact(util.FormatRate(d.ReadRate)),
			util.Compact(util.FormatRate(d.WriteRate)),
			d.FSType,
		}})
	}
	return t
}

var tempColumns = []tableColumn{
	{Title: "Sensor"},
	{Title: "Temp", Right: true},
	{Title: "High", Right: true},
	{Title: "Crit", Right: true},
}

func tempTable(st *store.Store, theme *Theme) table {
	t := table{Columns: tempColumns}
	limit := func(v float64) string {
		if v <= 0 {
			return "-"
		}
		return util.FormatCelsius(v)
	}
	for _, temp := range st.Temperatures() {
		t.Rows = append(t.Rows, tableRow{
			Cells:  []string{temp.Sensor, util.FormatCelsius(temp.Celsius), limit(temp.High), limit(temp.Critical)},
			Colors: []lipgloss.Color{"", theme.TempColor(temp)},
		})
	}
	return t
}

var procColumns = []tableColumn{
	{Title: "PID", Right: true},
	{Title: "Name"},
	{Title: "CPU%", Right: true},
	{Title: "Mem%", Right: true},
	{Title: "Read/s", Right: true},
	{Title: "Write/s", Right: true},
	{Title: "User"},
	{Title: "State"},
}

// procTable builds the process table for the view in ws. Column i sorts by
// store.Columns[i].
func procTable(st *store.Store, ws *WidgetState, theme *Theme) (table, error) {
	cols := append([]tableColumn(nil), procColumns...)
	if ws.Expanded {
		cols[store.ColumnName].Title = "Command"
	}
	arrow := "▲"
	if ws.Descending {
		arrow = "▼"
	}
	cols[ws.Sort].Title += arrow

	t := table{Columns: cols}
	rows, err := st.Processes().Rows(ws.View())
	if err != nil {
		return t, err
	}
	for _, r := range rows {
		name := r.Name
		if ws.Expanded {
			name = r.Command
		}
		if r.Count() > 1 {
			name = fmt.Sprintf("%s (%d)", name, r.Count())
		}
		cpu := util.FormatPercent(r.CPUPercent)
		if r.Fresh {
			cpu = "-"
		}
		t.Rows = append(t.Rows, tableRow{
			Cells: []string{
				strconv.Itoa(int(r.PID)),
				name,
				cpu,
				util.FormatPercent(r.MemPercent),
				util.Compact(util.FormatRate(r.ReadRate)),
				util.Compact(util.FormatRate(r.WriteRate)),
				r.User,
				r.State,
			},
			Colors: []lipgloss.Color{"", "", theme.MetricColor(r.CPUPercent), theme.MetricColor(r.MemPercent)},
		})
	}
	return t, nil
}

func procWidget(st *store.Store, ws *WidgetState, w, h, outerH int, focused bool, theme *Theme) widgetView {
	v := widgetView{Title: widgetTitles[WidgetProc]}
	t, err := procTable(st, ws, theme)
	if err != nil {
		v.Lines = []string{theme.fg(theme.Critical).Render(err.Error())}
	} else {
		v.Title = fmt.Sprintf("Processes %d", len(t.Rows))
		v.Lines = renderTable(t, w, h, outerH, ws, focused, theme)
	}

	var flags []string
	if ws.Group {
		flags = append(flags, "grouped")
	}
	if ws.Regex {
		flags = append(flags, "regex")
	}
	switch {
	case ws.Draft != "":
		v.Footer = ws.Draft
	case ws.Filter != "":
		v.Footer = "/" + ws.Filter
	case ws.Expanded && !ws.Group && ws.tracking:
		v.Footer = lineage(st.Processes(), ws.SelectedPID)
	}
	if len(flags) > 0 {
		v.Footer = strings.TrimSpace(v.Footer + " [" + strings.Join(flags, ",") + "]")
	}
	return v
}

// lineage describes the parent and children of pid, e.g.
// "parent sshd(20) 2 children".
func lineage(pt *store.ProcessTable, pid int32) string {
	if _, ok := pt.Get(pid); !ok {
		return ""
	}
	var parts []string
	if p, ok := pt.Parent(pid); ok {
		parts = append(parts, fmt.Sprintf("parent %s(%d)", p.Name, p.PID))
	}
	if n := len(pt.Children(pid)); n > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", n, util.Pluralize(n, "child", "children")))
	}
	return strings.Join(parts, " ")
}
