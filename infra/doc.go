// Package infra contains technical adapters such as metrics exporters,
// error reporting and the KPI database. These packages should depend only
// on the interfaces defined in the core packages.
package infra
