package field

// linePoints is the base award for clearing 1..4 rows at once.
var linePoints = [...]int{40, 100, 300, 1200}

// LinesPerLevel is the number of cleared rows needed to advance one level.
const LinesPerLevel = 10

// Points returns the award for clearing lines rows at level. Counts outside
// 1..4 score nothing.
func Points(level, lines int) int {
	if lines < 1 || lines > len(linePoints) {
		return 0
	}
	return linePoints[lines-1] * (level + 1)
}

// LevelForLines returns the level reached after clearing total rows,
// starting from startLevel.
func LevelForLines(startLevel, total int) int {
	if total < 0 {
		total = 0
	}
	return startLevel + total/LinesPerLevel
}
