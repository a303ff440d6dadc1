// Package viz is the terminal live view for swarm simulations.
//
// The view is a Bubble Tea program that owns the frame loop: every tick
// advances the simulation by one Step and the canvas renderer, attached
// to the simulation, redraws the first world as colored braille.
//
// # Key Bindings
//
//	Space/P - Pause/Resume
//	→/L     - Step one frame while paused
//	R       - Rebuild the scene from its config
//	S       - Toggle the stats panel
//	T       - Cycle themes
//	?       - Show help
//	Q       - Quit
//
// Mouse motion feeds an input.Sampler, so kinds that seek the pointer
// follow the cursor.
package viz
