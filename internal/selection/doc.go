// Package selection decides which stream variant to request for a run.
//
// Resolve inspects the whole collection once and fixes two mode flags. Height
// mode is TARGET when any eligible stream reaches the requested height, and
// BEST otherwise. Fps mode is TARGET when an eligible stream in that height
// region stays within the requested frame rate. Pick then filters and orders
// candidates of one kind under those flags.
package selection
