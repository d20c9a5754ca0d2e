// Package expr implements the enableWhen rule language.
//
//	rule    := or
//	or      := and ( "||" and )*
//	and     := unary ( "&&" unary )*
//	unary   := "!" unary | "(" or ")" | operand
//	operand := path [ op literal ]
//	op      := "==" | "!=" | "<" | "<=" | ">" | ">="
//
// A path alone tests truthiness. Paths read the evaluation root with dot
// traversal; `$` is the root itself, `$.a.b` is explicit root access and
// `extras.a` reads host-supplied extras. Literals are numbers, true, false,
// null (or nil) and strings quoted with " or '. A bare word on the right of
// an operator compares as a string. Ordering operators need a number.
package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-fieldschema/pkg/visibility"
)

// Evaluator compiles enableWhen rules. It satisfies visibility.Compiler.
type Evaluator struct{}

func New() *Evaluator { return &Evaluator{} }

// Eval compiles and evaluates rule in one step.
func (e *Evaluator) Eval(rule string, ctx visibility.Context) (bool, error) {
	program, err := e.Compile(rule)
	if err != nil {
		return false, err
	}
	return program.Eval(ctx)
}

// Compile parses rule into a reusable program. Empty rules always evaluate
// to true.
func (e *Evaluator) Compile(rule string) (visibility.Program, error) {
	source := strings.TrimSpace(rule)
	tokens, err := lex(source)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return program{source: source}, nil
	}

	p := &parser{tokens: tokens}
	root, err := p.or()
	if err != nil {
		return nil, err
	}
	if tok, ok := p.peek(); ok {
		return nil, fmt.Errorf("visibility/expr: unexpected %q after expression", tok.text)
	}
	return program{root: root, source: source}, nil
}

type program struct {
	root   node
	source string
}

func (p program) Eval(ctx visibility.Context) (bool, error) {
	if p.root == nil {
		return true, nil
	}
	return p.root.eval(ctx)
}

// String returns the rule source.
func (p program) String() string {
	return p.source
}

type tokenKind int

const (
	tokWord tokenKind = iota
	tokString
	tokOp
	tokNot
	tokAnd
	tokOr
	tokOpen
	tokClose
)

type token struct {
	kind tokenKind
	text string
}

type symbol struct {
	text string
	kind tokenKind
}

// Longer spellings come first so "<=" wins over "<".
var symbols = []symbol{
	{"==", tokOp}, {"!=", tokOp}, {"<=", tokOp}, {">=", tokOp},
	{"&&", tokAnd}, {"||", tokOr},
	{"<", tokOp}, {">", tokOp}, {"!", tokNot}, {"(", tokOpen}, {")", tokClose},
}

const wordStop = " \t\r\n()!=&|<>\"'"

func lex(src string) ([]token, error) {
	var out []token
	for pos := 0; pos < len(src); {
		ch := src[pos]
		if strings.IndexByte(" \t\r\n", ch) >= 0 {
			pos++
			continue
		}
		if ch == '"' || ch == '\'' {
			text, next, err := readQuoted(src, pos)
			if err != nil {
				return nil, err
			}
			out = append(out, token{kind: tokString, text: text})
			pos = next
			continue
		}
		if sym, ok := matchSymbol(src[pos:]); ok {
			out = append(out, token{kind: sym.kind, text: sym.text})
			pos += len(sym.text)
			continue
		}
		if strings.IndexByte("=&|", ch) >= 0 {
			return nil, fmt.Errorf("visibility/expr: unexpected %q at offset %d; use %q", ch, pos, string([]byte{ch, ch}))
		}
		end := pos
		for end < len(src) && strings.IndexByte(wordStop, src[end]) < 0 {
			end++
		}
		out = append(out, token{kind: tokWord, text: src[pos:end]})
		pos = end
	}
	return out, nil
}

func matchSymbol(rest string) (symbol, bool) {
	for _, sym := range symbols {
		if strings.HasPrefix(rest, sym.text) {
			return sym, true
		}
	}
	return symbol{}, false
}

// readQuoted scans the literal opening at src[start]. Backslash escapes the
// next byte; \n and \t are the usual control characters.
func readQuoted(src string, start int) (string, int, error) {
	quote := src[start]
	var b strings.Builder
	for i := start + 1; i < len(src); i++ {
		switch c := src[i]; {
		case c == quote:
			return b.String(), i + 1, nil
		case c == '\\' && i+1 < len(src):
			i++
			switch src[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(src[i])
			}
		default:
			b.WriteByte(c)
		}
	}
	return "", 0, fmt.Errorf("visibility/expr: unterminated string starting at offset %d", start)
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) accept(kind tokenKind) (token, bool) {
	tok, ok := p.peek()
	if !ok || tok.kind != kind {
		return token{}, false
	}
	p.pos++
	return tok, true
}

func (p *parser) or() (node, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.accept(tokOr); !ok {
			return left, nil
		}
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		left = anyOf{left, right}
	}
}

func (p *parser) and() (node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.accept(tokAnd); !ok {
			return left, nil
		}
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = allOf{left, right}
	}
}

func (p *parser) unary() (node, error) {
	if _, ok := p.accept(tokNot); ok {
		inner, err := p.unary()
		if err != nil {
			return nil, err
		}
		return negate{inner}, nil
	}
	if _, ok := p.accept(tokOpen); ok {
		inner, err := p.or()
		if err != nil {
			return nil, err
		}
		if _, ok := p.accept(tokClose); !ok {
			return nil, errors.New("visibility/expr: missing closing ')'")
		}
		return inner, nil
	}
	return p.operand()
}

func (p *parser) operand() (node, error) {
	tok, ok := p.accept(tokWord)
	if !ok {
		if next, more := p.peek(); more {
			return nil, fmt.Errorf("visibility/expr: expected a path, got %q", next.text)
		}
		return nil, errors.New("visibility/expr: expression ends early")
	}
	if looksLikeNumber(tok.text) {
		return nil, fmt.Errorf("visibility/expr: expected a path, got number %s", tok.text)
	}
	path := tok.text

	op, ok := p.accept(tokOp)
	if !ok {
		return truthyPath(path), nil
	}
	want, err := p.literal()
	if err != nil {
		return nil, err
	}
	if _, numeric := want.(float64); !numeric && op.text != "==" && op.text != "!=" {
		return nil, fmt.Errorf("visibility/expr: operator %q requires a number", op.text)
	}
	return comparison{path: path, op: op.text, want: want}, nil
}

// literal returns a string, float64, bool or nil.
func (p *parser) literal() (any, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, errors.New("visibility/expr: missing value after operator")
	}
	p.pos++
	switch tok.kind {
	case tokString:
		return tok.text, nil
	case tokWord:
		switch strings.ToLower(tok.text) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		case "null", "nil":
			return nil, nil
		}
		if looksLikeNumber(tok.text) {
			n, err := strconv.ParseFloat(tok.text, 64)
			if err != nil {
				return nil, fmt.Errorf("visibility/expr: invalid number %q", tok.text)
			}
			return n, nil
		}
		return tok.text, nil
	default:
		return nil, fmt.Errorf("visibility/expr: expected a value, got %q", tok.text)
	}
}

func looksLikeNumber(s string) bool {
	return s != "" && strings.IndexByte("0123456789+-", s[0]) >= 0
}

type node interface {
	eval(ctx visibility.Context) (bool, error)
}

type anyOf [2]node

func (n anyOf) eval(ctx visibility.Context) (bool, error) {
	for _, side := range n {
		if ok, err := side.eval(ctx); err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

type allOf [2]node

func (n allOf) eval(ctx visibility.Context) (bool, error) {
	for _, side := range n {
		if ok, err := side.eval(ctx); err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

type negate struct{ inner node }

func (n negate) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.inner.eval(ctx)
	return !ok && err == nil, err
}

type truthyPath string

func (n truthyPath) eval(ctx visibility.Context) (bool, error) {
	value, _ := resolve(ctx, string(n))
	return truthy(value), nil
}

type comparison struct {
	path string
	op   string
	want any
}

func (n comparison) eval(ctx visibility.Context) (bool, error) {
	got, _ := resolve(ctx, n.path)

	if want, ok := n.want.(float64); ok {
		num, numeric := toNumber(got)
		switch n.op {
		case "==", "!=":
			// Missing or non-numeric values compare as zero.
			return (num == want) == (n.op == "=="), nil
		case "<":
			return numeric && num < want, nil
		case "<=":
			return numeric && num <= want, nil
		case ">":
			return numeric && num > want, nil
		default:
			return numeric && num >= want, nil
		}
	}

	var equal bool
	switch want := n.want.(type) {
	case nil:
		equal = got == nil
	case bool:
		equal = toBool(got) == want
	case string:
		equal = toText(got) == want
	}
	return equal == (n.op == "=="), nil
}

func resolve(ctx visibility.Context, path string) (any, bool) {
	switch {
	case path == "$":
		return ctx.Self, ctx.Self != nil
	case strings.HasPrefix(path, "$."):
		return walk(ctx.Values, path[2:])
	case strings.HasPrefix(path, "extras."):
		return walk(ctx.Extras, strings.TrimPrefix(path, "extras."))
	default:
		return walk(ctx.Values, path)
	}
}

// walk prefers a key spelled exactly like path before splitting it on dots.
func walk(values map[string]any, path string) (any, bool) {
	if values == nil || path == "" {
		return nil, false
	}
	if v, ok := values[path]; ok {
		return v, true
	}
	var current any = values
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = m[part]; !ok {
			return nil, false
		}
	}
	return current, true
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return strings.TrimSpace(v) != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	}
	if n, ok := toNumber(value); ok {
		return n != 0
	}
	return true
}

func toBool(value any) bool {
	if s, ok := value.(string); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b
		}
	}
	return truthy(value)
}

func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return n, err == nil
	}
	return 0, false
}

func toText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	}
	return fmt.Sprint(value)
}
