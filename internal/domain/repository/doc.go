// Package repository defines the persistence contracts the social login
// broker consumes. Storage engines live under internal/store.
package repository
