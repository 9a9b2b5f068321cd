// Package api is the HTTP surface of the drill server. It routes requests
// with chi, decodes and validates JSON bodies, drives drill sessions through
// the session registry, serves word statistics and streams session snapshots
// over websockets. Internal errors are mapped to status codes and safe
// messages before they reach a client.
package api
