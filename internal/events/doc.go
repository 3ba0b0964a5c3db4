// Package events provides lifecycle events for card flows.
//
// Orchestrators emit a FlowEvent whenever a flow starts, advances to a new
// step, completes or fails. Host applications register EventHandlers to feed
// these into their own analytics without the flow engine knowing about them.
//
// The primary components are:
// - FlowEvent: a single lifecycle event with a JSON payload
// - EventHandler: Interface for components that can handle events
// - EventEmitter: Interface for components that can emit events
package events
