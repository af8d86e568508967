// Package domain contains the core model of the service-domain exporter.
//
// The domain is transport- and persistence-agnostic: it does not depend on HTTP,
// spreadsheet encoding, or the filesystem. Infra adapters map into/from these types.
package domain
