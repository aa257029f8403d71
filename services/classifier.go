package services

// ScoreCategory is the relative-performance class of a single hole score.
type ScoreCategory int

const (
	CategoryNone ScoreCategory = iota
	CategoryAlbatross
	CategoryEagle
	CategoryBirdie
	CategoryPar
	CategoryBogey
	CategoryDouble
	CategoryTripleOrWorse
)

func (c ScoreCategory) String() string {
	switch c {
	case CategoryAlbatross:
		return "Albatross"
	case CategoryEagle:
		return "Eagle"
	case CategoryBirdie:
		return "Birdie"
	case CategoryPar:
		return "Par"
	case CategoryBogey:
		return "Bogey"
	case CategoryDouble:
		return "Double Bogey"
	case CategoryTripleOrWorse:
		return "Triple+"
	default:
		return ""
	}
}

// Classify maps a hole score and its par to a category. A zero score is
// the unplayed sentinel and a zero par means the course has no par data,
// so both return CategoryNone.
func Classify(score, par int) ScoreCategory {
	if score == 0 || par == 0 {
		return CategoryNone
	}
	switch delta := score - par; {
	case delta <= -3:
		return CategoryAlbatross
	case delta == -2:
		return CategoryEagle
	case delta == -1:
		return CategoryBirdie
	case delta == 0:
		return CategoryPar
	case delta == 1:
		return CategoryBogey
	case delta == 2:
		return CategoryDouble
	default:
		return CategoryTripleOrWorse
	}
}
