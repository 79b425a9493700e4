package session

// Stage is one phase of a session's fixed five-step lifecycle.
type Stage string

const (
	StageWaiting  Stage = "waiting"
	StageReadcomp Stage = "readcomp"
	StageHomework Stage = "homework"
	StageSurvey   Stage = "survey"
	StageFinished Stage = "finished"
)

var stageOrder = map[Stage]int{
	StageWaiting:  0,
	StageReadcomp: 1,
	StageHomework: 2,
	StageSurvey:   3,
	StageFinished: 4,
}

// Order returns the position of the stage in the lifecycle, or -1 for
// values the backend never sends.
func (s Stage) Order() int {
	if n, ok := stageOrder[s]; ok {
		return n
	}
	return -1
}

// Known reports whether the stage is one of the five lifecycle members.
func (s Stage) Known() bool {
	_, ok := stageOrder[s]
	return ok
}

// Terminal reports whether the session is over.
func (s Stage) Terminal() bool {
	return s == StageFinished
}

// Before reports whether s comes strictly earlier in the lifecycle than
// other. Unknown stages are never before anything.
func (s Stage) Before(other Stage) bool {
	a, b := s.Order(), other.Order()
	return a >= 0 && b >= 0 && a < b
}
