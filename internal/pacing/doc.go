// Package pacing holds the pure scheduling arithmetic: which interval today falls in,
// how many working days are left before the interval boundary, how many targets to
// process today and at which timestamps.
//
// Nothing here touches storage or the clock; callers pass "now" explicitly and all
// calendar math happens in now's location.
package pacing
