// Package types defines the Store and Table interfaces, the marketplace entity
// types (refs, offers, negotiations, media, beacon settings), the peer wire
// messages exchanged between beacons, and the standard error values.
//
// Entity methods modify structs in memory only; callers persist changes
// through Table.Set.
package types
