// Package console interprets operator line commands against one running
// keystore. It stands in for the driver interface when exercising the
// registry by hand or from scripts.
//
// Commands
//
//   - ticket                          Print a fresh random client ticket
//   - ctx-alloc [ticket]              Allocate a context (random ticket if omitted)
//   - ctx-free <handle>               Free a context and all its slots
//   - ctx-free-ticket <ticket>        Free the context registered under a ticket
//   - ctx-find <ticket>               Look a context up by ticket
//   - ctx-list                        List live contexts
//   - count                           Print the number of live contexts and,
//                                     with a key memory budget, bytes in use
//   - slot-alloc <handle>             Allocate the lowest free slot
//   - slot-free <handle> <id>         Free a slot
//   - slot-find <handle> <id>         Look a slot up by ID
//   - slot-set <handle> <id> <key>    Store wrapped key bytes (hex, or b64:...)
//   - slot-get <handle> <id>          Print wrapped key bytes as hex
//   - dump [handle]                   Diagnostic dump of one or all contexts
//   - save | load                     Persist or restore the encrypted snapshot
//   - teardown                        Free every context
//   - help | quit
//
// Tickets are written as 16 hex digits.
package console
