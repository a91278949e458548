// Package types defines entity kinds, the model payload structures
// exchanged with the kernel, configuration, and the standard error types
// shared by the geometry, attribute, and model packages.
package types
