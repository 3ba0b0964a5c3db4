// Package domain contains the value types shared by the card flow engine:
// the data a user supplies at each step, the steps themselves, the mutable
// state a flow accumulates and the two error taxonomies (validation errors
// returned as data, domain errors that end a flow attempt).
//
// The package has no behaviour beyond small helpers on those types and no
// dependencies on the rest of the module.
package domain
