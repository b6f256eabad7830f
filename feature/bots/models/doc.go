// Package models defines the database schema for bot instances and the
// users that own them, plus their API representations.
package models
