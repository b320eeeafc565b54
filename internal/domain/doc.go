// Package domain defines core data models and interfaces shared across the
// keystore. It contains plain types (tickets, snapshots, limits) and
// contracts (interfaces) only.
package domain
