// Package mocks provides test doubles for the task package's collaborators.
package mocks
