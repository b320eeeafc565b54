// Package app wires application dependencies for the CLI.
//
// LoadConfig layers defaults, dalkeystore.yaml, DALKEYSTORE_* environment
// variables and flags into a Config. New builds the allocator, registry and
// snapshot store from it and returns them as an App.
package app
