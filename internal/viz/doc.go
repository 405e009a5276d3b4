// Package viz draws the gravity playground in the terminal.
//
// The live view is a Bubble Tea program that owns one scene.Playground
// and calls its Frame callback on every tick:
//
//   - [Model]: the live view itself
//   - [Canvas]: Braille-based pixel canvas, mapped to the scene by a [Viewport]
//   - [Recorder]: GIF capture of canvas frames
//   - [RunInteractive]: preset picker in front of the live view
//
// # Key Bindings
//
//	Space - Pause/Resume
//	+ / - - Steps per frame
//	D     - Toggle collider outlines
//	R     - Reset the playground
//	X / S - Delete the newest bunny / the sun
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//
// Mouse motion over the canvas aims the player's stick.
package viz
