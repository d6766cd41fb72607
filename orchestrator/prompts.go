package orchestrator

import "fmt"

// solutionPrompt is the multi-part instruction for the image pipeline. The
// screenshots ride alongside as image parts.
func solutionPrompt(language string) string {
	return fmt.Sprintf(`You are a precise assistant solving the question shown in the attached screenshots.
Analyze these screenshots and answer the question they contain.

Rules:
- For a multiple-choice question, end your reply with one line of the form
  "FINAL ANSWER: <letter(s)> <answer value>". Use comma-separated letters for
  multi-select. If the question is fill-in-the-blank, put the answer phrase
  after "FINAL ANSWER:".
- For a coding question, reply with a fenced %s code block containing the
  complete solution, preceded by a single line "Main concept: <concept>".
- For a design/markup question, reply with a complete HTML document followed
  by its CSS.
- Keep reasoning brief; put any explanation in a fenced block tagged
  "explanation".`, language)
}

// fastTextPrompt wraps OCR-extracted text into a minimal prompt tuned for
// minimal output: only the terminal answer line is requested.
func fastTextPrompt(extracted, language string) string {
	return fmt.Sprintf(`Answer the question in the following text, extracted from screenshots via OCR
(expect minor recognition noise). Reply with ONLY one line of the form
"FINAL ANSWER: <letter(s)> <answer value>" (or the answer phrase for
fill-in-the-blank). No explanations.

%s`, extracted)
}

// debugPrompt carries the prior answer verbatim plus the fix instruction.
// The error screenshots ride alongside as image parts (or as OCR text for a
// text-only backend).
func debugPrompt(lastResponse string) string {
	return fmt.Sprintf(`Your previous answer was:

%s

The attached screenshots show errors or failed results produced by that
answer. Fix the problems they show. Keep the exact same output format as the
previous answer (same markers, same fencing).`, lastResponse)
}

// debugPromptText is the text-only variant with the OCR transcription of
// the error screenshots embedded.
func debugPromptText(lastResponse, extracted string) string {
	return fmt.Sprintf(`%s

Error output extracted from the screenshots via OCR:

%s`, debugPrompt(lastResponse), extracted)
}
