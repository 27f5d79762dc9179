// Package events defines the solver related events emitted on the event bus.
//
// Available event types:
//   - SolveCompleted: a solver run finished and produced a result
//   - YearSimulated: one trajectory year was dispatched
//   - ConstraintsChecked: the constraint checker evaluated a configuration
package events
