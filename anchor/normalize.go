package anchor

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Normalized is the comparable form of a piece of document text together
// with the reversible offset mappings back to the original text. All
// indices are rune indices.
type Normalized struct {
	// Text is the normalized text: symbols spelled out, quotes dropped,
	// punctuation spaced, lowercased, whitespace collapsed and trimmed.
	Text string

	// Stripped is Text with all spaces removed, for matching against
	// documents whose extraction inserts spurious internal spaces.
	Stripped string

	// ToOriginal maps each rune index of Text to the original rune index
	// it was produced from. Monotonically non-decreasing.
	ToOriginal []int

	// FromOriginal maps each original rune index to the first rune index
	// of Text produced from it, or -1 for dropped positions (collapsed
	// whitespace, removed quote marks, trimmed edges).
	FromOriginal []int

	// StrippedToText maps each rune index of Stripped to its rune index
	// in Text.
	StrippedToText []int
}

// quoteRunes are dropped entirely during normalization.
var quoteRunes = map[rune]struct{}{
	'"': {}, '\'': {},
	'‘': {}, '’': {}, '‚': {}, '‛': {},
	'“': {}, '”': {}, '„': {}, '‟': {},
	'‹': {}, '›': {}, '«': {}, '»': {},
	'´': {}, '′': {}, '″': {},
	'「': {}, '」': {}, '『': {}, '』': {},
}

// spacedPunct maps to a single space during normalization.
var spacedPunct = map[rune]struct{}{
	',': {}, '/': {}, '#': {}, '!': {}, '$': {}, '%': {}, '^': {},
	'&': {}, '*': {}, ';': {}, ':': {}, '{': {}, '}': {}, '=': {},
	'-': {}, '_': {}, '`': {}, '~': {}, '(': {}, ')': {}, '\\': {},
	'[': {}, ']': {},
}

// symbolNames spells out Greek letters and common math glyphs as the
// ASCII names used for matching. All values are lowercase.
var symbolNames = map[rune]string{
	'α': "alpha", 'β': "beta", 'γ': "gamma", 'δ': "delta",
	'ε': "epsilon", 'ζ': "zeta", 'η': "eta", 'θ': "theta",
	'ι': "iota", 'κ': "kappa", 'λ': "lambda", 'μ': "mu",
	'ν': "nu", 'ξ': "xi", 'ο': "omicron", 'π': "pi",
	'ρ': "rho", 'ς': "sigma", 'σ': "sigma", 'τ': "tau",
	'υ': "upsilon", 'φ': "phi", 'χ': "chi", 'ψ': "psi",
	'ω': "omega",
	'Α': "alpha", 'Β': "beta", 'Γ': "gamma", 'Δ': "delta",
	'Ε': "epsilon", 'Ζ': "zeta", 'Η': "eta", 'Θ': "theta",
	'Ι': "iota", 'Κ': "kappa", 'Λ': "lambda", 'Μ': "mu",
	'Ν': "nu", 'Ξ': "xi", 'Ο': "omicron", 'Π': "pi",
	'Ρ': "rho", 'Σ': "sigma", 'Τ': "tau", 'Υ': "upsilon",
	'Φ': "phi", 'Χ': "chi", 'Ψ': "psi", 'Ω': "omega",
	'∞': "infinity", '∂': "partial", '∇': "nabla", '∑': "sum",
	'∫': "integral", '√': "sqrt", '≈': "approx", '≠': "neq",
	'≤': "leq", '≥': "geq", '±': "pm", '×': "times", '÷': "div",
	'∈': "in", '∉': "notin", '⊂': "subset", '⊃': "superset",
	'∪': "union", '∩': "intersection", '∧': "and", '∨': "or",
	'¬': "not", '→': "rightarrow", '←': "leftarrow",
	'↔': "leftrightarrow", '⇒': "rightarrow", '⇐': "leftarrow",
	'⇔': "leftrightarrow",
}

// latexCommands maps backslash-escaped command names to the same ASCII
// names symbolNames produces, so "\alpha" and "α" normalize identically.
var latexCommands = map[string]string{
	"alpha": "alpha", "beta": "beta", "gamma": "gamma", "delta": "delta",
	"epsilon": "epsilon", "zeta": "zeta", "eta": "eta", "theta": "theta",
	"iota": "iota", "kappa": "kappa", "lambda": "lambda", "mu": "mu",
	"nu": "nu", "xi": "xi", "omicron": "omicron", "pi": "pi",
	"rho": "rho", "sigma": "sigma", "tau": "tau", "upsilon": "upsilon",
	"phi": "phi", "chi": "chi", "psi": "psi", "omega": "omega",
	"varepsilon": "epsilon", "vartheta": "theta", "varpi": "pi",
	"varrho": "rho", "varsigma": "sigma", "varphi": "phi",
	"Gamma": "gamma", "Delta": "delta", "Theta": "theta",
	"Lambda": "lambda", "Xi": "xi", "Pi": "pi", "Sigma": "sigma",
	"Upsilon": "upsilon", "Phi": "phi", "Psi": "psi", "Omega": "omega",
	"infty": "infinity", "partial": "partial", "nabla": "nabla",
	"sum": "sum", "int": "integral", "sqrt": "sqrt",
	"approx": "approx", "neq": "neq", "ne": "neq",
	"leq": "leq", "le": "leq", "geq": "geq", "ge": "geq",
	"pm": "pm", "times": "times", "div": "div",
	"in": "in", "notin": "notin",
	"subset": "subset", "supset": "superset",
	"cup": "union", "cap": "intersection",
	"wedge": "and", "land": "and", "vee": "or", "lor": "or",
	"neg": "not", "lnot": "not",
	"rightarrow": "rightarrow", "to": "rightarrow",
	"leftarrow": "leftarrow", "gets": "leftarrow",
	"leftrightarrow": "leftrightarrow",
	"Rightarrow": "rightarrow", "implies": "rightarrow",
	"Leftarrow": "leftarrow",
	"Leftrightarrow": "leftrightarrow", "iff": "leftrightarrow",
}

// latexNames holds the command names sorted longest-first, so that
// "\varepsilon" is never matched as "\epsilon" with trailing garbage.
var latexNames = func() []string {
	names := make([]string, 0, len(latexCommands))
	for name := range latexCommands {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return names
}()

// posRune is one rune of the expansion pass, tagged with the original
// rune index it came from.
type posRune struct {
	r    rune
	orig int
}

// expandCommands recognizes backslash-escaped command names and expands
// them before the character pass. Every rune of an expansion maps back to
// the original index of the backslash.
func expandCommands(runes []rune) []posRune {
	out := make([]posRune, 0, len(runes))
	for i := 0; i < len(runes); i++ {
		if runes[i] != '\\' {
			out = append(out, posRune{runes[i], i})
			continue
		}

		// Collect the run of letters following the backslash.
		j := i + 1
		for j < len(runes) && isASCIILetter(runes[j]) {
			j++
		}
		rest := string(runes[i+1 : j])

		matched := ""
		for _, name := range latexNames {
			if strings.HasPrefix(rest, name) {
				matched = name
				break
			}
		}
		if matched == "" {
			out = append(out, posRune{'\\', i})
			continue
		}
		for _, r := range latexCommands[matched] {
			out = append(out, posRune{r, i})
		}
		i += len(matched)
	}
	return out
}

func isASCIILetter(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
}

// foldRune decomposes a rune with NFKD and discards combining marks, so
// accented letters and compatibility forms compare by their base
// characters.
func foldRune(r rune) []rune {
	if r < utf8.RuneSelf {
		return []rune{r}
	}
	var out []rune
	for _, d := range norm.NFKD.String(string(r)) {
		if unicode.Is(unicode.Mn, d) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Normalize canonicalizes arbitrary document text into a comparable
// ASCII-ish form and keeps the reversible position mappings back to the
// original text. Empty input yields empty output and empty mappings.
// Normalizing already-normalized text returns the same string.
func Normalize(s string) *Normalized {
	runes := []rune(s)
	n := &Normalized{FromOriginal: make([]int, len(runes))}
	for i := range n.FromOriginal {
		n.FromOriginal[i] = -1
	}

	var out []rune
	emit := func(r rune, orig int) {
		if r == ' ' && (len(out) == 0 || out[len(out)-1] == ' ') {
			return // collapse runs, exclude leading spaces
		}
		out = append(out, r)
		n.ToOriginal = append(n.ToOriginal, orig)
		if n.FromOriginal[orig] == -1 {
			n.FromOriginal[orig] = len(out) - 1
		}
	}

	for _, pr := range expandCommands(runes) {
		switch {
		case isQuoteRune(pr.r):
			// dropped entirely
		case symbolNames[pr.r] != "":
			for _, r := range symbolNames[pr.r] {
				emit(r, pr.orig)
			}
		case isSpacedPunct(pr.r) || unicode.IsSpace(pr.r):
			emit(' ', pr.orig)
		default:
			for _, r := range foldRune(pr.r) {
				emit(unicode.ToLower(r), pr.orig)
			}
		}
	}

	// Trim a trailing space; its original position leaves the mapping.
	if len(out) > 0 && out[len(out)-1] == ' ' {
		orig := n.ToOriginal[len(out)-1]
		out = out[:len(out)-1]
		n.ToOriginal = n.ToOriginal[:len(out)]
		if n.FromOriginal[orig] == len(out) {
			n.FromOriginal[orig] = -1
		}
	}
	n.Text = string(out)

	stripped := make([]rune, 0, len(out))
	for i, r := range out {
		if r == ' ' {
			continue
		}
		stripped = append(stripped, r)
		n.StrippedToText = append(n.StrippedToText, i)
	}
	n.Stripped = string(stripped)

	return n
}

func isQuoteRune(r rune) bool {
	_, ok := quoteRunes[r]
	return ok
}

func isSpacedPunct(r rune) bool {
	_, ok := spacedPunct[r]
	return ok
}

// StrippedRange maps the half-open range [start, end) of Stripped back to
// the corresponding half-open rune range of the original text. Reports
// false when the range is empty or out of bounds.
func (n *Normalized) StrippedRange(start, end int) (int, int, bool) {
	if start < 0 || end > len(n.StrippedToText) || start >= end {
		return 0, 0, false
	}
	origStart := n.ToOriginal[n.StrippedToText[start]]
	origEnd := n.ToOriginal[n.StrippedToText[end-1]] + 1
	return origStart, origEnd, true
}
