// Package storage defines the records and interfaces for compendium catalog
// persistence. Implementations live in subpackages (sqlite).
package storage
