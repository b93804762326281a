// Package composition computes what every frame of a render shows.
//
// A Plan is built once per render from the scenes and the resolved timing
// source. Plan.Tick is a pure function of the frame number: it selects the
// active scene, its progress, the caption batch and highlighted word, the pan
// offset, and the cross-fade opacities. Pixel work lives in package canvas.
package composition
