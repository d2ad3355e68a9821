// Package tui renders arbitration replays for the terminal.
//
// [Renderer] formats one tick at a time and is shared by the plain
// simulate output and the interactive stepper. [Run] starts the stepper,
// a Bubbletea program that re-runs the scenario whenever its file is saved.
package tui
