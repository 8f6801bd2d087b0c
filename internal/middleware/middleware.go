// Package middleware holds the request pipeline and the local server's echo
// middleware.
//
// The pipeline wraps every function handler in an ordered list of stages.
// Each stage may hook the before, after and onError phases of an invocation.
// Stages normalize and authenticate the inbound event, validate payloads,
// and turn handler results or failures into exactly one well-formed response.
package middleware
