// Package canvas is the client-side raster model: a white Surface backed by
// gogpu/gg and a Renderer that turns pointer events into strokes on it.
//
// Drawing is destructive. Every segment is rasterized immediately and there is
// no stroke history to undo.
package canvas
