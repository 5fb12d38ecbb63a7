// Package viz is the terminal host for a blob session.
//
// [Model] drives one session from a bubbletea program: a 60 Hz tick calls
// AdvanceFrame, key and mouse events become session inputs, and the ring is
// drawn on a braille [Canvas] together with its face. [App] is a preset
// picker in front of it.
//
// # Key Bindings
//
//	Space  - Pause/Resume
//	N      - Advance one frame
//	R      - Reset the blob
//	Mouse  - Drag
//	Arrows - Nudge
//	G      - Cycle gravity
//	S      - Save the current frame as SVG
//	C      - Toggle GIF capture
//	?      - Show help overlay
package viz
