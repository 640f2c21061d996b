// Package domain contains the core marketplace entities (users, posts,
// offers, trades) with their validation and status rules. It is
// independent of any specific infrastructure or delivery mechanism.
package domain
