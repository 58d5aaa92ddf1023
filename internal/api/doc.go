// Package api serves the diagnosis engine over HTTP: one diagnose endpoint
// plus a health probe. Audio arrives as base64 WAV payloads and is decoded
// at this boundary before the core ever sees it.
package api
