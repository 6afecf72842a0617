package styles

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"

	"ghostkit/vars"
)

// stop reporting after that many problems, parser keeps going on garbage
const maxProblems = 32

// markup escaping left in place ("&gt;" instead of ">")
var entityRef = regexp.MustCompile(`&(?:[a-zA-Z]+|#[0-9]+|#[xX][0-9a-fA-F]+);`)

// Checker validates compiled CSS text with a real CSS grammar parser.
type Checker struct {
	log *zap.Logger
}

func NewChecker(log *zap.Logger) *Checker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Checker{log: log.Named("css-checker")}
}

// Check returns list of problems found in text, nil when text is valid CSS.
// Variables must be substituted beforehand, placeholders break block
// structure and are reported without parsing.
func (c *Checker) Check(text string) []string {
	var problems []string

	if names := vars.Unresolved(text); len(names) > 0 {
		for _, name := range names {
			problems = append(problems, fmt.Sprintf("unresolved variable %q", name))
		}
		return problems
	}

	p := css.NewParser(parse.NewInputString(text), false)

	var rules, atRules, decls, depth int
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			err := p.Err()
			if err == nil || errors.Is(err, io.EOF) {
				if depth != 0 {
					problems = append(problems, "unbalanced blocks at end of input")
				}
				c.log.Debug("CSS checked",
					zap.Int("rules", rules), zap.Int("at-rules", atRules), zap.Int("declarations", decls),
					zap.Int("problems", len(problems)))
				return problems
			}
			problems = append(problems, err.Error())
			if len(problems) >= maxProblems {
				return problems
			}
		case css.BeginAtRuleGrammar:
			atRules++
			depth++
		case css.EndAtRuleGrammar:
			depth--
		case css.BeginRulesetGrammar:
			rules++
			depth++
			if sel := selectorText(p.Values()); entityRef.MatchString(sel) {
				problems = append(problems, fmt.Sprintf("character reference in selector %q", sel))
			}
		case css.EndRulesetGrammar:
			depth--
		case css.DeclarationGrammar:
			decls++
			if len(p.Values()) == 0 {
				problems = append(problems, fmt.Sprintf("empty value for property %q", string(data)))
			}
		}
	}
}

func selectorText(values []css.Token) string {
	var b strings.Builder
	for _, v := range values {
		b.Write(v.Data)
	}
	return b.String()
}
