// Package service contains the application use cases for the booking API's
// resources: users, roles and the services catalog. Authentication and
// authorization live in the auth subpackage.
//
// Services receive store interfaces through their constructors, apply
// transactional boundaries where an operation reads and then writes, and
// return store and domain sentinels unchanged (wrapped with context) so the
// API layer can map them to status codes with errors.Is.
package service
