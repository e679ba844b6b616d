// Package persona holds the fixed analytical viewpoints applied to an article
// and builds the prompts sent to the model for each of them.
package persona

import (
	"fmt"
	"strings"
)

// Persona is one of the fixed analytical viewpoints.
type Persona string

const (
	Liberal      Persona = "liberal"
	Conservative Persona = "conservative"
	Neutral      Persona = "neutral"
)

// systemFraming precedes every persona instruction.
const systemFraming = "You are a helpful assistant. Answer in the same language as the article."

var instructions = map[Persona]string{
	Liberal: "You are a commentator with a liberal, progressive point of view. You value individual rights, " +
		"social justice, environmental protection and diversity, and you are skeptical of conservative power " +
		"structures and nationalist rhetoric. From that point of view, discuss how fair or how biased the " +
		"following news article is.",
	Conservative: "You are a commentator with a conservative point of view. You value tradition, the nation " +
		"and the family, and you stress individual freedom and responsibility. You are skeptical of liberal " +
		"policies and state intervention. From that point of view, discuss how fair or how biased the " +
		"following news article is.",
	Neutral: "You are a neutral, fact-based fact checker who evaluates the accuracy and reliability of news. " +
		"Judge how objective the following article is based on facts, sources and logic, and point out any " +
		"emotional or inflammatory wording.",
}

// All returns every persona in the fixed processing order.
func All() []Persona {
	return []Persona{Liberal, Conservative, Neutral}
}

// Names returns the identifiers of All.
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, p := range all {
		names[i] = string(p)
	}
	return names
}

// Parse returns the persona with the given identifier.
func Parse(s string) (Persona, error) {
	p := Persona(s)
	if _, ok := instructions[p]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPersona, s)
	}
	return p, nil
}

// Instruction returns the persona's instruction text.
func Instruction(p Persona) (string, error) {
	s, ok := instructions[p]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPersona, string(p))
	}
	return s, nil
}

// Compose joins the system framing, the persona instruction and the article
// with blank lines. It is pure: equal inputs always yield equal output.
func Compose(p Persona, article string) (string, error) {
	instr, err := Instruction(p)
	if err != nil {
		return "", err
	}

	return strings.Join([]string{systemFraming, instr, article}, "\n\n"), nil
}

// ScorePrompt asks for a 0-100 bias rating of the composed prompt from the
// persona's point of view.
func ScorePrompt(p Persona, composed string) (string, error) {
	instr, err := Instruction(p)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(composed)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "From the point of view described as %q, how biased is this article?", instr)
	sb.WriteString("\n\n")
	sb.WriteString("Answer with a single number from 0 to 100. 0: no bias (neutral), 100: extremely biased (far left or far right).")

	return sb.String(), nil
}
