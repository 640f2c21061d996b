// Package api handles incoming HTTP requests: routing, request decoding
// and validation, identity extraction, and response formatting. It adapts
// HTTP concerns to the application services and maps service errors to
// status codes in one place.
package api
