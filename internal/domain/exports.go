package domain

import (
	interfaces "dalkeystore/internal/domain/interfaces"
	types "dalkeystore/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	Fingerprint   = types.Fingerprint
	Ticket        = types.Ticket
	Snapshot      = types.Snapshot
	ContextRecord = types.ContextRecord
	SlotRecord    = types.SlotRecord
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	SnapshotStore = interfaces.SnapshotStore
	Allocator     = interfaces.Allocator
)

// Limits re-exported from the types subpackage.
const (
	ClientTicketSize  = types.ClientTicketSize
	ClientsMax        = types.ClientsMax
	SlotsMax          = types.SlotsMax
	MaxWrappedKeySize = types.MaxWrappedKeySize
)

// SnapshotVersion is the current Snapshot layout version.
const SnapshotVersion = 1

var (
	ParseTicket    = types.ParseTicket
	ParseTicketHex = types.ParseTicketHex
	ErrTicketSize  = types.ErrTicketSize
)
