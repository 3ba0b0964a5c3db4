// Package scheme talks to the card scheme backend over HTTP.
//
// Client is a synchronous JSON client for the scheme API. Async adapts it
// to the callback-shaped collaborator interfaces of package flow by running
// each call on a task.Runner, so flows never block their caller.
package scheme
