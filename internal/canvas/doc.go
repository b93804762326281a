// Package canvas owns the pixel surface a render draws into.
//
// Scene images are scaled once into oversized layers so the frame loop only
// crops and blends. A Surface composes one frame from a composition.State:
// the current layer panned horizontally, the previous layer underneath during
// a cross-fade, and the caption batch with its highlighted word. The frame
// buffer is RGBA, matching the encoder's raw input.
package canvas
