// Package commands defines the dalkeystore CLI and wires dependencies for subcommands.
//
// Commands
//
//   - shell          Drive an in-process registry with line commands
//   - ticket         Generate random client tickets
//   - config show    Print the effective configuration
//   - config init    Write dalkeystore.yaml
//   - snapshot info  Summarise the saved encrypted snapshot
//
// # Implementation
//
// The root command loads the layered configuration and builds the app
// (allocator, registry, snapshot store) before any subcommand runs. The
// registry is torn down, scrubbing all key material, when Execute returns.
package commands
