// Package estimate turns elapsed time and historical run durations into
// a display percentage and a rendered progress bar. The estimate is a
// heuristic display aid: it never influences when polling stops.
package estimate
