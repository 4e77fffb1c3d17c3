// Package primitives provides the declarative data structures a demonstration is
// authored in: scenarios, stages, steps and cues.
//
// These types carry no behaviour beyond validation. internal/core compiles a validated
// ScenarioConfig into a running engine; internal/production loads and stores them as
// YAML or JSON.
//
// Core invariants:
// - A scenario is either a timeline (stages with durations) or a chain (steps at
//   absolute offsets), never both
// - Stage ids are unique; step offsets never decrease
// - Every cue delay is measured from the start of its stage or step
package primitives
