// Package fleet fans one repository operation out over many repositories
// with bounded parallelism, per-repository failure isolation, and an
// aggregated, deterministically ordered report.
package fleet
