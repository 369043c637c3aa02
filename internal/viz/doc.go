// Package viz hosts the reveal effect in a terminal.
//
// Two surfaces implement [surface.Surface]:
//
//   - [Canvas]: braille cells, two by four dots each, colored per cell
//   - [Raster]: an RGBA image scaled by the device pixel ratio
//
// [Model] is the Bubble Tea app: a background field behind a short chat
// pane and an animated send icon. [Recorder] turns frames into a GIF.
//
// # Key Bindings
//
//	enter  - send the message and flash the icon
//	tab    - toggle hover over the background
//	ctrl+t - cycle themes
//	ctrl+g - toggle GIF recording
//	ctrl+s - save an SVG snapshot
//	f1     - show help
package viz
