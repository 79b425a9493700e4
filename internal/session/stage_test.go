package session

import "testing"

func TestStageOrder(t *testing.T) {
	ordered := []Stage{StageWaiting, StageReadcomp, StageHomework, StageSurvey, StageFinished}
	for i, s := range ordered {
		if s.Order() != i {
			t.Errorf("%s.Order() = %d, want %d", s, s.Order(), i)
		}
	}
	if Stage("bogus").Order() != -1 {
		t.Error("unknown stage should order as -1")
	}
}

func TestStageBefore(t *testing.T) {
	tests := []struct {
		name string
		a, b Stage
		want bool
	}{
		{"waiting before readcomp", StageWaiting, StageReadcomp, true},
		{"readcomp before finished", StageReadcomp, StageFinished, true},
		{"same stage not before", StageHomework, StageHomework, false},
		{"survey not before homework", StageSurvey, StageHomework, false},
		{"unknown never before", Stage("bogus"), StageFinished, false},
		{"nothing before unknown", StageWaiting, Stage("bogus"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Before(tt.b); got != tt.want {
				t.Errorf("%s.Before(%s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestStageTerminal(t *testing.T) {
	if StageSurvey.Terminal() {
		t.Error("survey should not be terminal")
	}
	if !StageFinished.Terminal() {
		t.Error("finished should be terminal")
	}
}
