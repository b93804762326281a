// Package assets fetches scene media referenced by a composition.
//
// References may be http(s) URLs, file:// URLs, or plain paths. Relative
// paths resolve against the composition's directory. Images decode as PNG,
// JPEG, GIF or WebP.
package assets
