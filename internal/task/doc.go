// Package task runs short background jobs on a fixed pool of workers. Card
// scheme calls are dispatched through it so that callers get their result
// through a callback instead of blocking.
package task
