// Package filestore implements store.ArtifactStore on a local directory,
// one <id>.json file per task.
package filestore
