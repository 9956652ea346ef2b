package config

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/rtop/internal/errors"
	"github.com/rileyhilliard/rtop/internal/layout"
	"github.com/rileyhilliard/rtop/internal/monitor"
)

var widgetAliases = map[string]layout.WidgetID{
	"memory":      monitor.WidgetMem,
	"network":     monitor.WidgetNet,
	"disks":       monitor.WidgetDisk,
	"temperature": monitor.WidgetTemp,
	"temps":       monitor.WidgetTemp,
	"processes":   monitor.WidgetProc,
	"procs":       monitor.WidgetProc,
}

// WidgetID resolves a widget type name from the config file.
func WidgetID(name string) (layout.WidgetID, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if id, ok := widgetAliases[name]; ok {
		return id, true
	}
	id := layout.WidgetID(name)
	return id, monitor.IsWidget(id)
}

// BuildLayout turns the configured rows into a validated layout tree. An
// omitted ratio counts as 1.
func BuildLayout(lc LayoutConfig) (*layout.Node, error) {
	if len(lc.Rows) == 0 {
		return nil, errors.New(errors.ErrLayout,
			"Layout has no rows",
			"Add at least one row under 'layout.rows', or remove 'layout' to use the default.")
	}

	root, err := buildRows(lc.Rows, 1, "layout")
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrLayout, err.Error(), "Check the 'layout' section in your .rtop.yaml.")
	}
	if err := layout.Validate(root); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrLayout, "Invalid layout: "+err.Error(), "Each widget may appear once and every ratio must be at least 1.")
	}
	return root, nil
}

func buildRows(rows []RowConfig, ratio int, path string) (*layout.Node, error) {
	children := make([]*layout.Node, 0, len(rows))
	for i, r := range rows {
		rowPath := fmt.Sprintf("%s.rows[%d]", path, i)
		if len(r.Widgets) == 0 {
			return nil, fmt.Errorf("%s has no widgets", rowPath)
		}
		widgets := make([]*layout.Node, 0, len(r.Widgets))
		for j, w := range r.Widgets {
			n, err := buildWidget(w, fmt.Sprintf("%s.widgets[%d]", rowPath, j))
			if err != nil {
				return nil, err
			}
			widgets = append(widgets, n)
		}
		children = append(children, layout.Column(ratioOr1(r.Ratio), widgets...))
	}
	return layout.Row(ratio, children...), nil
}

func buildWidget(w WidgetConfig, path string) (*layout.Node, error) {
	if len(w.Rows) > 0 {
		if w.Type != "" {
			return nil, fmt.Errorf("%s sets both 'type' and 'rows' - pick one", path)
		}
		return buildRows(w.Rows, ratioOr1(w.Ratio), path)
	}
	id, ok := WidgetID(w.Type)
	if !ok {
		return nil, fmt.Errorf("%s has unknown widget type '%s' (valid: %s)", path, w.Type, strings.Join(widgetNames(), ", "))
	}
	return layout.Leaf(id, ratioOr1(w.Ratio)), nil
}

func ratioOr1(r int) int {
	if r == 0 {
		return 1
	}
	return r
}

func widgetNames() []string {
	names := make([]string, len(monitor.Widgets))
	for i, id := range monitor.Widgets {
		names[i] = string(id)
	}
	return names
}
