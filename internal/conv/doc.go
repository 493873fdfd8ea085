// Package conv provides safe integer type conversion utilities.
//
// Slot indices are int32 throughout the engine while Go's collection APIs speak int
// and the bitset speaks uint. These helpers do the bounds checks at the boundaries
// where an overflow would otherwise silently wrap into a valid-looking index.
//
// For conversions that are provably safe by domain constraints (loop indices over a
// live range, counts bounded by the arena capacity) use direct casts instead.
package conv
