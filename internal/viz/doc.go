// Package viz renders solver output in the terminal.
//
//   - [EnergyChart] and [SeriesChart]: asciigraph line charts
//   - [ResultsTable]: lipgloss table of a comparison
//   - [Scatter]: braille phase portrait of two units
//   - [Replay]: Bubble Tea model stepping through a stored CBM trace
//
// # Key Bindings
//
//	Space - Pause/Resume playback
//	[ ]   - Step one sample back/forward
//	{ }   - Jump ten samples back/forward
//	R     - Restart from the first sample
//	T     - Cycle color themes
//	Q     - Quit
package viz
