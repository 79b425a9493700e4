// Package session holds the domain model for study-session execution:
// the stage lifecycle, the participant and session wire types, and the
// lifecycle-scoped state that drives a session from start to finish.
// Types mirror the backend wire protocol.
package session

// FeedbackType classifies a participant's attention level.
type FeedbackType string

const (
	FeedbackFocused    FeedbackType = "focused"
	FeedbackNormal     FeedbackType = "normal"
	FeedbackDistracted FeedbackType = "distracted"
)

// PersonalAnalyticsData is the input-activity portion of a feedback event.
type PersonalAnalyticsData struct {
	NumMouseClicks      int          `json:"num_mouse_clicks"`
	MouseMoveDistance   float64      `json:"mouse_move_distance"`
	MouseScrollDistance float64      `json:"mouse_scroll_distance"`
	NumKeyboardStrokes  int          `json:"num_keyboard_strokes"`
	AttentionFeedback   FeedbackType `json:"attention_feedback"`
}

// ClassifierData is the screen-classifier portion of a feedback event.
type ClassifierData struct {
	Screenshot string       `json:"screenshot"`
	Prediction FeedbackType `json:"prediction"`
}

// Feedback is one attention-feedback event accumulated during a session.
type Feedback struct {
	PersonalAnalyticsData PersonalAnalyticsData `json:"personal_analytics_data"`
	ClassifierData        ClassifierData        `json:"classifier_data"`
	Output                FeedbackType          `json:"output,omitempty"`
}

// Session is one scheduled unit of study participation. Seqnum, the
// equipment flags and the content links are set at creation and never
// change; Stage and Feedbacks are mutated server-side as the session
// progresses.
type Session struct {
	Seqnum        int        `json:"seqnum"`
	StartLink     string     `json:"start_link"`
	IsPassthrough bool       `json:"is_passthrough"`
	HasFeedback   bool       `json:"has_feedback"`
	NoEquipment   bool       `json:"no_equipment,omitempty"`
	Stage         Stage      `json:"stage"`
	Feedbacks     []Feedback `json:"feedbacks"`
	ReadcompLink  string     `json:"readcomp_link,omitempty"`
	PostLink      string     `json:"post_link,omitempty"`
}

// HasEquipment reports whether the session uses the headset at all.
func (s *Session) HasEquipment() bool {
	return !s.NoEquipment
}

// Analytics summarizes one finished session's attention distribution.
type Analytics struct {
	SessionSeqnum            int     `json:"session_seqnum"`
	PercentageTimeDistracted float64 `json:"percentage_time_distracted"`
	PercentageTimeNormal     float64 `json:"percentage_time_normal"`
	PercentageTimeFocused    float64 `json:"percentage_time_focused"`
}

// Participant is the backend's record for one study participant.
// ActiveSession is non-nil when a session was started but not finished,
// which is the resume-detection signal.
type Participant struct {
	Name          string      `json:"name"`
	Sessions      []Session   `json:"sessions"`
	Analytics     []Analytics `json:"sessions_analytics"`
	SurveyID      *int        `json:"survey_id,omitempty"`
	ActiveSession *Session    `json:"active_session"`
}

// Progress is the volatile (stage, remaining time) pair pushed from the
// backend. RemainingSeconds counts down and may go briefly negative
// before a stage transition is observed.
type Progress struct {
	Stage            Stage `json:"stage"`
	RemainingSeconds int   `json:"remaining_time"`
}
