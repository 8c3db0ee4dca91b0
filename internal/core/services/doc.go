// Package services implements the driving port interfaces.
// Services hold the per-scope client state and orchestrate calls to the
// backend through driven ports.
//
// Every mutating operation on a controller is admitted one at a time;
// a concurrent caller receives domain.ErrOperationInProgress.
package services
