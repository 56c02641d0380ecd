// Package testsupport provides shared helpers for package tests: temp-dir
// seeded configurations and input-tree fixtures.
package testsupport
