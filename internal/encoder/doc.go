// Package encoder drives ffmpeg for the render's video and output mux.
//
// A video encoder is a long-running ffmpeg process reading raw RGBA frames on
// stdin and writing an H.264 elementary file. The render loop polls Alive at a
// fixed frame interval so a process that exits mid-run is reported instead of
// silently truncating the output. Mux combines the finished video with the
// mixed WAV soundtrack into the final MP4.
package encoder
