package answer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabel(t *testing.T) {
	assert.Equal(t, "B", (&MultipleChoice{Labels: []string{"B"}}).Label())
	assert.Equal(t, "A, C", (&MultipleChoice{Labels: []string{"A", "C"}}).Label())
	assert.Equal(t, "", (&MultipleChoice{}).Label())
}

func TestPrimaryText(t *testing.T) {
	cases := []struct {
		name string
		in   StructuredAnswer
		want string
	}{
		{
			name: "mcq label and value",
			in: StructuredAnswer{
				Kind:           KindMultipleChoice,
				MultipleChoice: &MultipleChoice{Labels: []string{"B"}, Value: "4:3"},
			},
			want: "B 4:3",
		},
		{
			name: "fill in the blank",
			in: StructuredAnswer{
				Kind:           KindMultipleChoice,
				MultipleChoice: &MultipleChoice{Value: "photosynthesis"},
			},
			want: "photosynthesis",
		},
		{
			name: "bare label",
			in: StructuredAnswer{
				Kind:           KindMultipleChoice,
				MultipleChoice: &MultipleChoice{Labels: []string{"D"}},
			},
			want: "D",
		},
		{
			name: "code",
			in: StructuredAnswer{
				Kind: KindCodeSolution,
				Code: &CodeSolution{Code: "def solve():\n    pass", Concept: "two pointers"},
			},
			want: "def solve():\n    pass",
		},
		{
			name: "web markup",
			in: StructuredAnswer{
				Kind: KindWebMarkup,
				Web:  &WebMarkup{HTML: "<html></html>", CSS: "body {}"},
			},
			want: "<html></html>",
		},
		{
			name: "plain text",
			in: StructuredAnswer{
				Kind:  KindPlainText,
				Plain: &PlainText{Text: "just words"},
			},
			want: "just words",
		},
		{
			name: "nil variant is safe",
			in:   StructuredAnswer{Kind: KindCodeSolution},
			want: "",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.in.PrimaryText())
		})
	}
}
