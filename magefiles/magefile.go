//go:build mage

// Package main provides build targets for the geokernel project using Mage.
//
// Usage:
//
//	mage build          Compile geokernel binary to bin/
//	mage test:all       Run all tests
//	mage test:race      Run all tests with the race detector
//	mage test:cover     Run all tests and write coverage.out
//	mage lint           Run golangci-lint
//	mage clean          Remove build artifacts
//	mage install        Install geokernel to GOPATH/bin
//	mage stats          Print Go LOC and documentation word counts
package main
