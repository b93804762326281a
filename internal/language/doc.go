// Package language normalizes the narration language setting into the
// two-letter codes WhisperX expects. Input may be a two- or three-letter
// code, a BCP 47 tag such as "en-US", or an English language name.
package language
