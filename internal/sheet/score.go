package sheet

import (
	"strings"

	"github.com/mikey/orden-vaciado/internal/shift"
	"github.com/mikey/orden-vaciado/internal/utils"
)

// Name score weights
const (
	WeightFullDate   = 30
	WeightDayMonth   = 20
	WeightTurnMarker = 50
	WeightTargetLot  = 10000
	WeightLotOverlap = 10
	WeightConvention = 5
)

// NameScore rates how well a sheet name matches the shift: +30 for dd-mm-yyyy,
// +20 for dd-mm, +50 for an explicit marker of the current turn
func NameScore(name string, w shift.Window) int {
	name = utils.CollapseSpaces(name)
	score := 0
	if strings.Contains(name, w.DDMMYYYY()) {
		score += WeightFullDate
	}
	if strings.Contains(name, w.DDMM()) {
		score += WeightDayMonth
	}
	if HasTurnMarker(name, w.Turn) {
		score += WeightTurnMarker
	}
	return score
}

// ContentScore rates a sheet by the lots it lists: the target lot dominates,
// overlap with recently seen lots comes next, and the naming convention breaks
// ties
func ContentScore(sheetLots []string, target string, context map[string]struct{}, convention bool) int {
	score := 0
	overlap := 0
	for _, lot := range sheetLots {
		if target != "" && lot == target {
			score += WeightTargetLot
		}
		if _, ok := context[lot]; ok {
			overlap++
		}
	}
	score += WeightLotOverlap * overlap
	if convention {
		score += WeightConvention
	}
	return score
}

// MatchesTurnConvention reports whether the name follows the plant's naming
// for the current shift: turn 2 sheets carry "T2", turn 1 sheets carry the
// business date and no "T2"
func MatchesTurnConvention(name string, w shift.Window) bool {
	name = utils.CollapseSpaces(name)
	hasT2 := HasTurnMarker(name, 2)
	if w.Turn == 2 {
		return hasT2
	}
	return !hasT2 && strings.Contains(name, w.DDMM())
}

// MentionedTurn returns the first explicit turn (1 or 2) named by the sheet,
// or 0
func MentionedTurn(name string) int {
	for _, t := range turnMarkers(name) {
		if t == 1 || t == 2 {
			return t
		}
	}
	return 0
}

// HasTurnMarker reports whether the name carries an explicit "T<turn>"
func HasTurnMarker(name string, turn int) bool {
	for _, t := range turnMarkers(name) {
		if t == turn {
			return true
		}
	}
	return false
}

// turnMarkers finds "T<digit>" tokens not glued to a preceding letter or a
// following digit ("22-12 T2", "22-12T2" and "T1-22-12" match, "LOTE2" and
// "T12" do not)
func turnMarkers(name string) []int {
	upper := strings.ToUpper(name)
	var out []int
	for i := 0; i+1 < len(upper); i++ {
		if upper[i] != 'T' || !isDigit(upper[i+1]) {
			continue
		}
		if i > 0 && isLetter(upper[i-1]) {
			continue
		}
		if i+2 < len(upper) && isDigit(upper[i+2]) {
			continue
		}
		out = append(out, int(upper[i+1]-'0'))
	}
	return out
}

func isDigit(b byte) bool  { return b >= '0' && b <= '9' }
func isLetter(b byte) bool { return b >= 'A' && b <= 'Z' }
