// Package entities holds the value types of the capability registry:
// capability and module identifiers, cuts, filters, plans and manifests.
package entities
