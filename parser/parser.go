// Package parser turns free-form model completions into structured answers.
//
// Classification is a best-effort heuristic over raw text and is deliberately
// isolated behind this package so the sniffing rules can be replaced without
// touching the orchestrator. Parsing is pure: no I/O, deterministic, and
// total (every input string produces exactly one answer variant).
package parser

import (
	"regexp"
	"strings"

	"screen-solver/answer"
)

var (
	finalMarkerRe = regexp.MustCompile(`(?i)FINAL ANSWER:`)
	finalAnswerRe = regexp.MustCompile(`(?i)FINAL ANSWER:[ \t]*([^\n]+)`)
	labelsRe      = regexp.MustCompile(`^([A-Za-z](?:\s*,\s*[A-Za-z])*)(?:$|[\s.:)\-]+(.*))$`)
	legacyMCQRe   = regexp.MustCompile(`(?i)option\s+(\d+)\s*(?:/\s*([A-Za-z]))?\)[ \t]*([^\n]*)`)
	reasoningRe   = regexp.MustCompile("(?is)```(?:explanation|reasoning)[^\n]*\n(.*?)```")

	doctypeRe   = regexp.MustCompile(`(?i)<!DOCTYPE\s+html[^>]*>`)
	htmlOpenRe  = regexp.MustCompile(`(?i)<html[\s>]`)
	htmlCloseRe = regexp.MustCompile(`(?i)</html>`)
	styleRe     = regexp.MustCompile(`(?is)<style[^>]*>(.*?)</style>`)

	textFenceRe = regexp.MustCompile("(?s)```(?:text|plaintext)[^\n]*\n(.*?)```")
	conceptRe   = regexp.MustCompile(`(?im)^\s*(?:#+\s*)?(?:main\s+concept|concept)\s*:\s*(.+)$`)
)

// Parser classifies one raw completion into exactly one answer variant.
// The configured language only affects which fenced code blocks count as a
// code solution.
type Parser struct {
	language  string
	codeFence *regexp.Regexp
}

// New returns a parser tuned for the given language hint. An empty language
// defaults to python, matching the solution prompts.
func New(language string) *Parser {
	lang := strings.ToLower(strings.TrimSpace(language))
	if lang == "" {
		lang = "python"
	}
	fence := regexp.MustCompile("(?is)```" + regexp.QuoteMeta(lang) + "[^\n]*\n(.*?)```")
	return &Parser{language: lang, codeFence: fence}
}

// Parse classifies raw text, first match wins: multiple-choice markers, then
// web markup, then a language-tagged code fence, then plain text. The order
// is a tie-break; the later formats are more syntactically identifiable and
// must not shadow an explicit answer marker.
func (p *Parser) Parse(raw string) answer.StructuredAnswer {
	switch {
	case finalMarkerRe.MatchString(raw) || legacyMCQRe.MatchString(raw):
		return p.parseMultipleChoice(raw)
	case doctypeRe.MatchString(raw) || htmlOpenRe.MatchString(raw):
		return p.parseWebMarkup(raw)
	case p.codeFence.MatchString(raw):
		return p.parseCode(raw)
	default:
		return p.parsePlain(raw)
	}
}

func (p *Parser) parseMultipleChoice(raw string) answer.StructuredAnswer {
	mc := &answer.MultipleChoice{Raw: raw}
	if m := reasoningRe.FindStringSubmatch(raw); m != nil {
		mc.Reasoning = strings.TrimSpace(m[1])
	}

	// The FINAL ANSWER marker wins over the legacy option pattern whenever
	// both appear; the legacy form is only a fallback.
	if m := finalAnswerRe.FindStringSubmatch(raw); m != nil {
		payload := strings.TrimSpace(m[1])
		if lm := labelsRe.FindStringSubmatch(payload); lm != nil {
			for _, l := range strings.Split(lm[1], ",") {
				mc.Labels = append(mc.Labels, strings.ToUpper(strings.TrimSpace(l)))
			}
			mc.Value = strings.TrimSpace(lm[2])
		} else {
			// Fill-in-the-blank: the whole payload is the answer.
			mc.Value = payload
		}
		if len(mc.Labels) == 0 && mc.Value == "" {
			mc.Value = answer.NotFound
		}
		return answer.StructuredAnswer{Kind: answer.KindMultipleChoice, MultipleChoice: mc}
	}

	if m := legacyMCQRe.FindStringSubmatch(raw); m != nil {
		label := strings.ToUpper(m[2])
		if label == "" {
			label = m[1]
		}
		mc.Labels = []string{label}
		mc.Value = strings.TrimSpace(m[3])
		return answer.StructuredAnswer{Kind: answer.KindMultipleChoice, MultipleChoice: mc}
	}

	mc.Value = answer.NotFound
	return answer.StructuredAnswer{Kind: answer.KindMultipleChoice, MultipleChoice: mc}
}

func (p *Parser) parseWebMarkup(raw string) answer.StructuredAnswer {
	web := &answer.WebMarkup{Raw: raw}

	start := 0
	if loc := doctypeRe.FindStringIndex(raw); loc != nil {
		start = loc[0]
	} else if loc := htmlOpenRe.FindStringIndex(raw); loc != nil {
		start = loc[0]
	}

	end := len(raw)
	rest := ""
	if closes := htmlCloseRe.FindAllStringIndex(raw, -1); len(closes) > 0 {
		last := closes[len(closes)-1]
		end = last[1]
		rest = strings.TrimSpace(raw[end:])
		rest = strings.Trim(rest, "`")
		rest = strings.TrimSpace(rest)
	}
	web.HTML = strings.TrimSpace(raw[start:end])

	if rest != "" {
		web.CSS = rest
	} else if m := styleRe.FindStringSubmatch(raw); m != nil {
		web.CSS = strings.TrimSpace(m[1])
	}
	return answer.StructuredAnswer{Kind: answer.KindWebMarkup, Web: web}
}

func (p *Parser) parseCode(raw string) answer.StructuredAnswer {
	code := &answer.CodeSolution{Raw: raw}
	if m := p.codeFence.FindStringSubmatch(raw); m != nil {
		code.Code = strings.TrimRight(m[1], "\n")
	} else {
		// Permissive fallback, never discard content.
		code.Code = raw
	}
	if m := conceptRe.FindStringSubmatch(raw); m != nil {
		code.Concept = strings.TrimSpace(m[1])
	}
	return answer.StructuredAnswer{Kind: answer.KindCodeSolution, Code: code}
}

func (p *Parser) parsePlain(raw string) answer.StructuredAnswer {
	text := raw
	if m := textFenceRe.FindStringSubmatch(raw); m != nil {
		text = m[1]
	}
	return answer.StructuredAnswer{
		Kind:  answer.KindPlainText,
		Plain: &answer.PlainText{Text: strings.TrimSpace(text)},
	}
}
