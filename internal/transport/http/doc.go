// Package http implements the HTTP handlers of albumsvc.
//
// Handlers are thin: they parse path and body input, call one dependency and
// format the result. Plain-text endpoints answer with text/plain bodies;
// structured results use go-chi/render. Input errors are written as RFC 7807
// problems through the shared errors.ErrorHandler.
//
// Album store failures are answered with status 500 and a text/plain body
// carrying the store's error description, or a fixed "database error" when
// error exposure is disabled in the database configuration.
package http
