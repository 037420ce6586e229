// Package middleware groups the Fiber middlewares used by the service.
//
// Subpackages:
//   - rayid: assigns a unique ray_id to every request for log correlation.
//   - auth: API-key guard applied to the admin route group.
package middleware
