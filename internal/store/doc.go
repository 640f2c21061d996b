// Package store defines the persistence interfaces for the marketplace
// entities together with the transaction helpers that let a service run
// several store operations atomically. Implementations live under
// internal/platform; business rules stay independent of the database.
package store