// Package handler holds the function handlers and the Base wrapper that
// puts each of them behind the standard middleware pipeline.
//
// A Function is one deployable unit: in Lambda it is selected by name and
// invoked with API Gateway proxy events, locally the router replays HTTP
// requests through the same Function.
package handler
