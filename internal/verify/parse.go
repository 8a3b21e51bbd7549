package verify

import (
	"strings"
)

const (
	alignedTabOutputConstant   = "0\t0"
	alignedSpaceOutputConstant = "0 0"
	unappliedMarkerConstant    = "+"
	outputLineSeparator        = "\n"
)

// MainAligned reports whether left/right count output shows zero commits on both sides.
func MainAligned(leftRightOutput string) bool {
	trimmed := strings.TrimSpace(leftRightOutput)
	return trimmed == alignedTabOutputConstant || trimmed == alignedSpaceOutputConstant
}

// CountUnapplied counts cherry listing lines whose patch is absent upstream.
func CountUnapplied(cherryOutput string) int {
	unapplied := 0
	for _, line := range strings.Split(cherryOutput, outputLineSeparator) {
		if strings.HasPrefix(strings.TrimSpace(line), unappliedMarkerConstant) {
			unapplied++
		}
	}
	return unapplied
}
