package utils

const (
	// NODETOL is the default geometric tolerance for mesh tracking, relative
	// to the length of the segment being tracked
	NODETOL = 1.e-10
)
