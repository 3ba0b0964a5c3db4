// Package api exposes the sandbox scheme backend over HTTP. It decodes and
// validates requests, calls the scheme service and maps service errors to
// status codes and machine-readable error codes.
package api
