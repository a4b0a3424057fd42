// Package testutil provides a fixture web application for package tests.
package testutil
