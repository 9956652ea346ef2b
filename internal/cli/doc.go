// Package cli implements the rtop command-line interface.
//
// The root command runs the dashboard. Its flags layer over the resolved
// configuration (file, then RTOP_* environment, then flags) before the
// result is validated and converted into monitor.Options:
//
//	rtop                      - Run the dashboard
//	rtop config show          - Print the resolved configuration as YAML
//	rtop config path          - Show which config file is used
//	rtop version [--short]    - Print build information
//	rtop completion <shell>   - Generate shell completions
//
// # Startup
//
// runDashboard refuses to start without a terminal on stdout, redirects the
// standard logger to a file (RTOP_DEBUG or --log-file) or discards it, picks
// the metrics backend and probes it behind a spinner. Only then does the
// dashboard take over the screen. Interrupt and terminate signals cancel the
// run context, which stops the sampler and the program together.
//
// # Errors
//
// Every failure is printed by Execute in the structured "✗ message" form
// from the errors package, and the process exits with status 1. Mistyped
// subcommands get a did-you-mean suggestion.
package cli
