// Package viz is a terminal viewer for a running simulation.
//
// [Model] is a Bubble Tea program that steps a driver once per frame and
// draws every particle as a dot on a braille [Canvas]. The panel beside it
// shows the tick counter, a kinetic energy history and the tunable kernel
// constants.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to the initial buffer
//	Tab   - Select a constant
//	Up/K  - Increase the selected constant
//	Down/J- Decrease the selected constant
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
