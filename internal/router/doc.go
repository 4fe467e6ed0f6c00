// Package router maps (method, path pattern) pairs to handlers.
//
// Patterns are made of literal segments and named parameters written as
// ":name", each occupying a whole segment:
//
//	rt := router.New(logger)
//	rt.MustRegister(http.MethodGet, "/users/:id", userHandler)
//	rt.MustRegister(http.MethodPost, "/db/update/:id", updateHandler)
//
// Matching rules:
//
//   - the method must match exactly; HEAD is not folded into GET
//   - literal segments match byte for byte, parameters match one non-empty segment
//   - where a literal and a parameter could both match, the literal wins,
//     whatever the registration order
//   - anything unmatched, including a known path with another method,
//     gets 404 with an empty body
//
// Two routes for the same method whose patterns differ only in parameter
// names are duplicates and the second Register fails with ErrDuplicateRoute.
// Handlers read bound values with Param.
package router
