// Package store defines the persistence interfaces of the sandbox scheme
// backend and their in-memory implementations. The sandbox keeps no state
// across restarts.
package store
