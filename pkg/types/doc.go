// Package types defines the Store and Table interfaces, the storage
// Observer hook, configuration, and the standard errors for the dirstore
// storage system.
package types
