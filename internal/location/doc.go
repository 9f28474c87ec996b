// Package location provides homes and the locations inside them.
//
// A Home is the unit of ownership: users are linked to the homes they manage
// through user_home, and devices and automations belong to exactly one home.
// A Location (a room or zone) always belongs to one home.
//
// The package provides HomeRepository and LocationRepository interfaces with
// SQL implementations on the shared database manager. Locations are loaded
// with their home resolved through a HomeGetter.
//
// # Thread Safety
//
// The SQL repositories are safe for concurrent use; the manager serialises
// access to SQLite.
package location
