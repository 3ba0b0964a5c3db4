// Package flow drives the link, unlink and payment flows of the closed-loop
// card scheme.
//
// Each flow is run by its own Orchestrator. The host UI feeds user input in
// with UpdateCollectedData, which stores it and reports field validation
// results synchronously to a ValidationDelegate. Submit checks that the
// current step has everything it needs, calls the scheme collaborator
// asynchronously and, when the callback arrives, either advances to the next
// step or reports a DomainError to the ErrorDelegate. Step changes are
// reported to an optional StepDelegate.
//
// An Orchestrator is meant to be driven from one logical sequence, typically
// a UI event loop. Collaborator callbacks may arrive on any goroutine; the
// orchestrator guards its own state and calls delegates without holding its
// lock.
package flow
