// Package testsupport provides fixtures shared by package tests: temp-rooted
// configs, synthetic images and archives, and ledger helpers.
package testsupport
