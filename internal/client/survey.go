package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// surveyCompleteCode is the platform's completion status for a
// submitted instrument. It is the only value that counts as complete;
// the API returns it as a string or a number depending on export
// settings, so both are accepted.
const surveyCompleteCode = "2"

// Survey polls the external survey platform for instrument completion.
// The platform has no push capability at this boundary, so polling is
// the contract; the interval is owned by the caller.
type Survey struct {
	apiURL string
	token  string
	client *http.Client
}

// NewSurvey creates a survey-platform client.
func NewSurvey(apiURL, token string) *Survey {
	return &Survey{
		apiURL: apiURL,
		token:  token,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// FetchRecord retrieves the flat record for one survey ID.
func (s *Survey) FetchRecord(recordID string) (map[string]json.RawMessage, error) {
	form := url.Values{}
	form.Set("token", s.token)
	form.Set("content", "record")
	form.Set("format", "json")
	form.Set("type", "flat")
	form.Set("records", recordID)

	resp, err := s.client.PostForm(s.apiURL, form)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("survey record fetch: %d", resp.StatusCode)
	}

	var records []map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("parsing survey record: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// CheckCompletion reports whether the named instrument was submitted
// for the record. A missing record or field reads as not complete, not
// as an error.
func (s *Survey) CheckCompletion(recordID, instrument string) (bool, error) {
	record, err := s.FetchRecord(recordID)
	if err != nil {
		return false, err
	}
	if record == nil {
		return false, nil
	}
	raw, ok := record[instrument+"_complete"]
	if !ok {
		return false, nil
	}
	return completionValue(raw) == surveyCompleteCode, nil
}

// completionValue normalizes the completion field, which arrives as
// either "2" or 2.
func completionValue(raw json.RawMessage) string {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return strconv.Itoa(int(num))
	}
	return ""
}

// ReadcompInstrument returns the reading-comprehension instrument name
// for a session sequence number.
func ReadcompInstrument(seqnum int) string {
	if seqnum <= 1 {
		return "reading_comp"
	}
	return "reading_comp_" + strconv.Itoa(seqnum)
}

// PostInstrument returns the post-survey instrument name for a session
// sequence number. Sessions 4 and 12 carry the usability scale and use
// a different naming.
func PostInstrument(seqnum int) string {
	if seqnum == 4 || seqnum == 12 {
		return "post_surveys_sus_" + strconv.Itoa(seqnum)
	}
	return "post_surveys_" + strconv.Itoa(seqnum)
}

// InstrumentFor picks the instrument to poll for a stage's submission
// confirmation. Only the readcomp and survey stages have one.
func InstrumentFor(stage string, seqnum int) string {
	switch strings.ToLower(stage) {
	case "readcomp":
		return ReadcompInstrument(seqnum)
	case "survey":
		return PostInstrument(seqnum)
	default:
		return ""
	}
}
