// Package api handles incoming HTTP requests, request decoding and
// validation, and response formatting for the account and pet post
// endpoints. It translates HTTP concerns into service calls and maps
// service errors back onto status codes.
package api
