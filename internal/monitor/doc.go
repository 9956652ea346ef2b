// Package monitor implements the rtop terminal dashboard.
//
// The dashboard shows CPU, memory, network, disk, temperature and process
// widgets arranged by a layout tree, refreshed from a background sampler.
//
// # Architecture
//
// The package uses the Bubble Tea framework, which follows The Elm Architecture
// (Model-Update-View pattern):
//
//   - Model: owns the metric store, the dashboard state and per-widget state
//   - Update: applies snapshots, keys, mouse events and resizes
//   - View: returns the last rendered frame
//
// # Message Flow
//
//  1. The sampler pushes snapshots into a bounded queue
//  2. A command blocked on Queue.Recv delivers each one as a snapshotMsg
//  3. Update applies it to the store (unless frozen) and re-arms the command
//  4. Whenever something changed, Update re-renders the frame once
//
// Rendering is a pure function of the state, the store, the computed layout
// and the widget states (see Render), so View itself never does any work.
//
// # Files
//
//	dashboard.go   - Options, New and Run: wiring of harvester, sampler and program
//	model.go       - Bubble Tea model and input handling
//	keybindings.go - key map shared by input handling and the help overlay
//	view.go        - frame composition, widget boxes and the header line
//	widgets.go     - per-widget content
//	table.go       - column fitting, scrolling and table drawing
//	graphs.go      - braille graphs
//	styles.go      - themes and color thresholds
package monitor
