// Package surface connects browser playback surfaces to the player over a
// websocket.
//
// The Hub broadcasts JSON commands (load, play, pause, clear, state,
// transport) to every connected surface and turns inbound events into
// player commands: "naturalEnd" advances the session when it names the
// active entry, "metadataLoaded" records a duration, "select" loads an
// entry and "transport" adjusts the mirrored Transport. A plain "ping" text frame is answered with "pong".
//
// Transport mirrors the surface's transport controls and applies the same
// clamping the controls do: seeks stay within [0, duration], volume within
// [0, 1], playback rate within [0.25, 2].
package surface
