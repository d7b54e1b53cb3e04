// Package dice interprets RPG dice notation and rolls dice groups.
//
// A roll request is exactly one die group ("3d6") with an optional linear
// modifier ("+5" or "-1"). Notation is parsed by Parse into a Spec, rolled by a
// Roller against a random.Generator, and the modifier is applied last with no
// clamping, so "1d6-1" can yield 0.
//
// Validation always runs before any draw: a rejected call leaves the
// generator untouched. When both count and sides are invalid the count error
// is reported.
package dice
