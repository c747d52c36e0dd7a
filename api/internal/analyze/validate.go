package analyze

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Validate turns decoded, untrusted model output into a Result. It is pure
// and all-or-nothing: one malformed event or problem fails the whole call.
// The only graceful degradation is the figure region, which silently becomes
// "no region" when missing, non-numeric or degenerate.
func Validate(v any) (Result, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return Result{}, &FormatError{Reason: "top-level value is not an object"}
	}
	tag, _ := obj["type"].(string)
	switch tag {
	case typeAnnouncement:
		return validateAnnouncement(obj)
	case typeTest:
		return validateTest(obj)
	}
	return Result{}, &FormatError{Reason: fmt.Sprintf("unknown type tag %q", tag)}
}

func validateAnnouncement(obj map[string]any) (Result, error) {
	raw, ok := obj["events"].([]any)
	if !ok || len(raw) == 0 {
		return Result{}, &FormatError{Reason: "announcement requires a non-empty events array"}
	}
	events := make([]Event, 0, len(raw))
	for i, e := range raw {
		ev, err := parseEvent(e)
		if err != nil {
			return Result{}, &FormatError{Reason: fmt.Sprintf("events[%d]", i), Err: err}
		}
		events = append(events, ev)
	}
	return Result{
		Kind: KindAnnouncement,
		Announcement: &Announcement{
			FullText: coerceString(obj["fullText"]),
			Events:   events,
		},
	}, nil
}

func validateTest(obj map[string]any) (Result, error) {
	raw, ok := obj["problems"].([]any)
	if !ok {
		return Result{}, &FormatError{Reason: "test requires a problems array"}
	}
	problems := make([]Problem, 0, len(raw))
	for i, p := range raw {
		pr, err := parseProblem(p)
		if err != nil {
			return Result{}, &FormatError{Reason: fmt.Sprintf("problems[%d]", i), Err: err}
		}
		problems = append(problems, pr)
	}
	return Result{
		Kind: KindTest,
		Test: &Test{
			SummaryTitle: strings.TrimSpace(coerceString(obj["summaryTitle"])),
			Subject:      strings.TrimSpace(coerceString(obj["subject"])),
			Date:         strings.TrimSpace(coerceString(obj["date"])),
			Problems:     problems,
		},
	}, nil
}

func parseEvent(v any) (Event, error) {
	o, ok := v.(map[string]any)
	if !ok {
		return Event{}, fmt.Errorf("event is not an object")
	}
	name := strings.TrimSpace(coerceString(o["eventName"]))
	start := strings.TrimSpace(coerceString(o["eventDate"]))
	if name == "" || start == "" {
		return Event{}, fmt.Errorf("event requires eventName and eventDate")
	}
	return Event{
		Name:  name,
		Start: start,
		End:   strings.TrimSpace(coerceString(o["eventEndDate"])),
		Memo:  strings.TrimSpace(coerceString(o["memo"])),
	}, nil
}

func parseProblem(v any) (Problem, error) {
	o, ok := v.(map[string]any)
	if !ok {
		return Problem{}, fmt.Errorf("problem is not an object")
	}
	text := strings.TrimSpace(coerceString(o["text"]))
	if text == "" {
		return Problem{}, fmt.Errorf("problem requires text")
	}
	p := Problem{Text: text}
	if reg, ok := parseRegion(o["imageRegion"]); ok {
		p.Region = &reg
	}
	return p, nil
}

// parseRegion returns ok=false for anything that does not clamp to a
// positive-area box with all four coordinates numeric.
func parseRegion(v any) (Region, bool) {
	o, ok := v.(map[string]any)
	if !ok {
		return Region{}, false
	}
	ymin, ok1 := asNumber(o["ymin"])
	xmin, ok2 := asNumber(o["xmin"])
	ymax, ok3 := asNumber(o["ymax"])
	xmax, ok4 := asNumber(o["xmax"])
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return Region{}, false
	}
	return Region{YMin: ymin, XMin: xmin, YMax: ymax, XMax: xmax}.Clamp()
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// coerceString stringifies the JSON primitives the model sometimes emits
// where a string is expected. nil maps to the empty string.
func coerceString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	case json.Number:
		return s.String()
	default:
		return fmt.Sprint(s)
	}
}

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// ExtractJSON returns the interior of the first fenced code block when the
// text contains one, otherwise the text itself.
func ExtractJSON(text string) string {
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}

// DecodeText runs the full text-to-Result pipeline: fence extraction, JSON
// parsing, validation.
func DecodeText(text string) (Result, error) {
	var v any
	if err := json.Unmarshal([]byte(ExtractJSON(text)), &v); err != nil {
		return Result{}, &FormatError{Reason: "response is not valid JSON", Err: err}
	}
	return Validate(v)
}
