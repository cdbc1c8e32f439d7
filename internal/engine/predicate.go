package engine

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Condition-предикаты решают, выполнять ли шаг, по результатам
// предыдущих шагов:
//
//	validate.get('is_valid') == true
//	fetch.count > 10 && fetch.status == 'ok'
//	!(enrich.get('skipped') == true) || fallback.ready == true
//
// Грамматика намеренно минимальна: доступ к результатам шагов
// (step.key или step.get('key')), литералы, сравнения и булевы связки.
// Никаких вызовов функций, присваиваний и доступа к окружению —
// предикат не может выйти за пределы namespace результатов.
//
//	expr       = or
//	or         = and { ("||" | "or") and }
//	and        = unary { ("&&" | "and") unary }
//	unary      = ("!" | "not") unary | comparison
//	comparison = term [ ("==" | "!=" | "<" | "<=" | ">" | ">=") term ]
//	term       = literal | lookup | "(" expr ")"
//	lookup     = IDENT "." ( IDENT | "get" "(" STRING ")" )
//	literal    = NUMBER | STRING | "true" | "false" | "nil"

// EvaluateCondition вычисляет предикат над результатами шагов.
//
// Пустой предикат — true (шаг выполняется всегда). Обращение к
// отсутствующему шагу или ключу даёт nil, как и .get() по
// отсутствующему ключу. Синтаксическая ошибка или сравнение
// несовместимых типов — ошибка: оркестратор считает такой шаг
// упавшим, чтобы опечатка в предикате не проходила молча.
func EvaluateCondition(condition string, results Results) (bool, error) {
	if strings.TrimSpace(condition) == "" {
		return true, nil
	}

	node, err := parsePredicate(condition)
	if err != nil {
		return false, err
	}

	value, err := node.eval(results)
	if err != nil {
		return false, err
	}

	b, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("%w: predicate result is %T, want bool",
			ErrPredicateType, value)
	}
	return b, nil
}

// --- Лексер ---

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokOp     // == != < <= > >= && || ! ( ) .
	tokKeyword // true false nil and or not get
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

var predicateKeywords = map[string]bool{
	"true": true, "false": true, "nil": true,
	"and": true, "or": true, "not": true,
	"get": true,
}

// tokenize разбивает предикат на токены.
func tokenize(input string) ([]token, error) {
	var tokens []token
	runes := []rune(input)
	i := 0

	for i < len(runes) {
		r := runes[i]

		if unicode.IsSpace(r) {
			i++
			continue
		}

		// Идентификаторы и ключевые слова
		if unicode.IsLetter(r) || r == '_' {
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_' || runes[i] == '-') {
				i++
			}
			text := string(runes[start:i])
			kind := tokIdent
			if predicateKeywords[strings.ToLower(text)] {
				kind = tokKeyword
				text = strings.ToLower(text)
			}
			tokens = append(tokens, token{kind: kind, text: text, pos: start})
			continue
		}

		// Числа (включая отрицательные как унарный минус не поддерживаем —
		// минус допустим только как часть числового литерала)
		if unicode.IsDigit(r) || (r == '-' && i+1 < len(runes) && unicode.IsDigit(runes[i+1])) {
			start := i
			i++
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				i++
			}
			tokens = append(tokens, token{kind: tokNumber, text: string(runes[start:i]), pos: start})
			continue
		}

		// Строки в одинарных или двойных кавычках
		if r == '\'' || r == '"' {
			quote := r
			start := i
			i++
			var sb strings.Builder
			closed := false
			for i < len(runes) {
				if runes[i] == '\\' && i+1 < len(runes) {
					sb.WriteRune(runes[i+1])
					i += 2
					continue
				}
				if runes[i] == quote {
					closed = true
					i++
					break
				}
				sb.WriteRune(runes[i])
				i++
			}
			if !closed {
				return nil, fmt.Errorf("%w: unterminated string at position %d",
					ErrPredicateSyntax, start)
			}
			tokens = append(tokens, token{kind: tokString, text: sb.String(), pos: start})
			continue
		}

		// Операторы
		two := ""
		if i+1 < len(runes) {
			two = string(runes[i : i+2])
		}
		switch two {
		case "==", "!=", "<=", ">=", "&&", "||":
			tokens = append(tokens, token{kind: tokOp, text: two, pos: i})
			i += 2
			continue
		}
		switch r {
		case '<', '>', '!', '(', ')', '.':
			tokens = append(tokens, token{kind: tokOp, text: string(r), pos: i})
			i++
			continue
		}

		return nil, fmt.Errorf("%w: unexpected character %q at position %d",
			ErrPredicateSyntax, string(r), i)
	}

	tokens = append(tokens, token{kind: tokEOF, pos: len(runes)})
	return tokens, nil
}

// --- Парсер (рекурсивный спуск) ---

// predicateNode — узел AST предиката.
type predicateNode interface {
	eval(results Results) (any, error)
}

type parser struct {
	tokens []token
	pos    int
}

func parsePredicate(input string) (predicateNode, error) {
	tokens, err := tokenize(input)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.current().kind != tokEOF {
		return nil, fmt.Errorf("%w: unexpected %q at position %d",
			ErrPredicateSyntax, p.current().text, p.current().pos)
	}
	return node, nil
}

func (p *parser) current() token {
	return p.tokens[p.pos]
}

func (p *parser) advance() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

// match съедает текущий токен, если он совпадает с одним из ожидаемых.
func (p *parser) match(kind tokenKind, texts ...string) bool {
	t := p.current()
	if t.kind != kind {
		return false
	}
	for _, text := range texts {
		if t.text == text {
			p.advance()
			return true
		}
	}
	return false
}

func (p *parser) parseOr() (predicateNode, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.match(tokOp, "||") || p.match(tokKeyword, "or") {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: "||", left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (predicateNode, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.match(tokOp, "&&") || p.match(tokKeyword, "and") {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: "&&", left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (predicateNode, error) {
	if p.match(tokOp, "!") || p.match(tokKeyword, "not") {
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &notNode{inner: inner}, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (predicateNode, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	t := p.current()
	if t.kind == tokOp {
		switch t.text {
		case "==", "!=", "<", "<=", ">", ">=":
			p.advance()
			right, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			return &binaryNode{op: t.text, left: left, right: right}, nil
		}
	}
	return left, nil
}

func (p *parser) parseTerm() (predicateNode, error) {
	t := p.current()

	switch t.kind {
	case tokNumber:
		p.advance()
		n, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad number %q", ErrPredicateSyntax, t.text)
		}
		return &literalNode{value: n}, nil

	case tokString:
		p.advance()
		return &literalNode{value: t.text}, nil

	case tokKeyword:
		switch t.text {
		case "true":
			p.advance()
			return &literalNode{value: true}, nil
		case "false":
			p.advance()
			return &literalNode{value: false}, nil
		case "nil":
			p.advance()
			return &literalNode{value: nil}, nil
		}

	case tokOp:
		if t.text == "(" {
			p.advance()
			inner, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			if !p.match(tokOp, ")") {
				return nil, fmt.Errorf("%w: missing ')' at position %d",
					ErrPredicateSyntax, p.current().pos)
			}
			return inner, nil
		}

	case tokIdent:
		return p.parseLookup()
	}

	return nil, fmt.Errorf("%w: unexpected %q at position %d",
		ErrPredicateSyntax, t.text, t.pos)
}

// parseLookup разбирает доступ к результату шага:
// step.key или step.get('key').
func (p *parser) parseLookup() (predicateNode, error) {
	stepTok := p.advance()

	if !p.match(tokOp, ".") {
		return nil, fmt.Errorf("%w: expected '.' after %q at position %d",
			ErrPredicateSyntax, stepTok.text, p.current().pos)
	}

	t := p.advance()
	switch {
	case t.kind == tokKeyword && t.text == "get":
		if !p.match(tokOp, "(") {
			return nil, fmt.Errorf("%w: expected '(' after get at position %d",
				ErrPredicateSyntax, p.current().pos)
		}
		keyTok := p.advance()
		if keyTok.kind != tokString {
			return nil, fmt.Errorf("%w: get() takes a string key, got %q",
				ErrPredicateSyntax, keyTok.text)
		}
		if !p.match(tokOp, ")") {
			return nil, fmt.Errorf("%w: missing ')' after get(%q)",
				ErrPredicateSyntax, keyTok.text)
		}
		return &lookupNode{stepID: stepTok.text, key: keyTok.text}, nil

	case t.kind == tokIdent || t.kind == tokKeyword:
		// Ключевое слово после точки — обычное имя ключа
		return &lookupNode{stepID: stepTok.text, key: t.text}, nil
	}

	return nil, fmt.Errorf("%w: expected key after %q., got %q",
		ErrPredicateSyntax, stepTok.text, t.text)
}

// --- Вычисление ---

type literalNode struct {
	value any
}

func (n *literalNode) eval(Results) (any, error) {
	return n.value, nil
}

// lookupNode — обращение к результату шага.
// Отсутствующий шаг или ключ даёт nil (семантика .get()).
type lookupNode struct {
	stepID string
	key    string
}

func (n *lookupNode) eval(results Results) (any, error) {
	output, ok := results[n.stepID]
	if !ok {
		return nil, nil
	}
	return output[n.key], nil
}

type notNode struct {
	inner predicateNode
}

func (n *notNode) eval(results Results) (any, error) {
	value, err := n.inner.eval(results)
	if err != nil {
		return nil, err
	}
	b, ok := value.(bool)
	if !ok {
		return nil, fmt.Errorf("%w: ! applied to %T, want bool",
			ErrPredicateType, value)
	}
	return !b, nil
}

type binaryNode struct {
	op    string
	left  predicateNode
	right predicateNode
}

func (n *binaryNode) eval(results Results) (any, error) {
	left, err := n.left.eval(results)
	if err != nil {
		return nil, err
	}

	// Булевы связки с коротким замыканием по значению
	if n.op == "&&" || n.op == "||" {
		lb, ok := left.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: %s applied to %T, want bool",
				ErrPredicateType, n.op, left)
		}
		if n.op == "&&" && !lb {
			return false, nil
		}
		if n.op == "||" && lb {
			return true, nil
		}
		right, err := n.right.eval(results)
		if err != nil {
			return nil, err
		}
		rb, ok := right.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: %s applied to %T, want bool",
				ErrPredicateType, n.op, right)
		}
		return rb, nil
	}

	right, err := n.right.eval(results)
	if err != nil {
		return nil, err
	}

	switch n.op {
	case "==":
		return valuesEqual(left, right), nil
	case "!=":
		return !valuesEqual(left, right), nil
	case "<", "<=", ">", ">=":
		return compareOrdered(n.op, left, right)
	}

	return nil, fmt.Errorf("%w: unknown operator %q", ErrPredicateSyntax, n.op)
}

// valuesEqual сравнивает значения на равенство.
// Числовые типы приводятся к float64, чтобы 10 == 10.0 и int из
// результата шага совпадал с числовым литералом.
func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	an, aok := toFloat(a)
	bn, bok := toFloat(b)
	if aok && bok {
		return an == bn
	}

	return a == b
}

// compareOrdered выполняет сравнение по порядку для чисел и строк.
func compareOrdered(op string, a, b any) (bool, error) {
	an, aok := toFloat(a)
	bn, bok := toFloat(b)
	if aok && bok {
		switch op {
		case "<":
			return an < bn, nil
		case "<=":
			return an <= bn, nil
		case ">":
			return an > bn, nil
		case ">=":
			return an >= bn, nil
		}
	}

	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		switch op {
		case "<":
			return as < bs, nil
		case "<=":
			return as <= bs, nil
		case ">":
			return as > bs, nil
		case ">=":
			return as >= bs, nil
		}
	}

	return false, fmt.Errorf("%w: cannot compare %T and %T with %s",
		ErrPredicateType, a, b, op)
}

// toFloat приводит числовые типы к float64.
// Покрывает типы из JSON-декодирования и типичные Go-числа.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
