// Package domain contains the core data types of a batch run: question
// records read from the input file, the tasks planned from them, the
// authenticated session shared by all workers, and the completion results
// and artifacts persisted per task.
//
// Types in this package carry no I/O. Validation lives next to the type it
// guards so every adapter applies the same rules.
package domain
