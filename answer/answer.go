package answer

import "strings"

// Kind discriminates the answer variants produced by the response parser.
type Kind string

const (
	KindMultipleChoice Kind = "multiple_choice"
	KindCodeSolution   Kind = "code_solution"
	KindWebMarkup      Kind = "web_markup"
	KindPlainText      Kind = "plain_text"
)

// NotFound is the sentinel answer value used when a completion carried an
// MCQ marker but no extractable answer. It is a terminal parse outcome, not
// an error; the UI renders it distinctly from a real answer.
const NotFound = "Answer not found"

// StructuredAnswer is the single artifact handed to the presentation sink.
// Exactly one variant pointer is non-nil, matching Kind. Treat as immutable
// once constructed.
type StructuredAnswer struct {
	Kind           Kind            `json:"kind"`
	MultipleChoice *MultipleChoice `json:"multiple_choice,omitempty"`
	Code           *CodeSolution   `json:"code_solution,omitempty"`
	Web            *WebMarkup      `json:"web_markup,omitempty"`
	Plain          *PlainText      `json:"plain_text,omitempty"`
}

// MultipleChoice holds an extracted multiple-choice answer. Labels is empty
// for fill-in-the-blank answers, where Value carries the whole phrase.
type MultipleChoice struct {
	Labels    []string `json:"labels"`
	Value     string   `json:"value"`
	Reasoning string   `json:"reasoning,omitempty"`
	Raw       string   `json:"raw"`
}

// Label renders the label set the way it appeared in the completion,
// e.g. "B" or "A, C". Empty for fill-in-the-blank.
func (m *MultipleChoice) Label() string { return strings.Join(m.Labels, ", ") }

type CodeSolution struct {
	Code    string `json:"code"`
	Concept string `json:"concept,omitempty"`
	Raw     string `json:"raw"`
}

type WebMarkup struct {
	HTML string `json:"html"`
	CSS  string `json:"css,omitempty"`
	Raw  string `json:"raw"`
}

type PlainText struct {
	Text string `json:"text"`
}

// PrimaryText returns the most useful single string for a given answer:
// the code for code solutions, the label+value for MCQ, the markup for web
// answers, the text otherwise. Used by the clipboard sink.
func (a StructuredAnswer) PrimaryText() string {
	switch a.Kind {
	case KindMultipleChoice:
		if a.MultipleChoice == nil {
			return ""
		}
		if len(a.MultipleChoice.Labels) == 0 {
			return a.MultipleChoice.Value
		}
		if a.MultipleChoice.Value == "" {
			return a.MultipleChoice.Label()
		}
		return a.MultipleChoice.Label() + " " + a.MultipleChoice.Value
	case KindCodeSolution:
		if a.Code == nil {
			return ""
		}
		return a.Code.Code
	case KindWebMarkup:
		if a.Web == nil {
			return ""
		}
		return a.Web.HTML
	default:
		if a.Plain == nil {
			return ""
		}
		return a.Plain.Text
	}
}
