package actionprofile

import (
	"strings"
	"unicode"
)

// segment is one simple command of a compound shell line.
type segment struct {
	text  string
	piped bool // stdin is the previous segment's stdout
}

// splitResult is a compound command broken on ;, &&, ||, | and &.
type splitResult struct {
	segments     []segment
	substitution bool // $(...), `...` or <(...) seen outside single quotes
	heredoc      bool
	balanced     bool
}

// splitCommand splits on command separators while respecting quotes.
func splitCommand(cmd string) splitResult {
	res := splitResult{balanced: true}
	runes := []rune(cmd)
	var cur strings.Builder
	inSingle, inDouble := false, false
	nextPiped := false

	flush := func(pipedNext bool) {
		if text := strings.TrimSpace(cur.String()); text != "" {
			res.segments = append(res.segments, segment{text: text, piped: nextPiped})
		}
		cur.Reset()
		nextPiped = pipedNext
	}

	for i := 0; i < len(runes); i++ {
		c := runes[i]
		next := rune(0)
		if i+1 < len(runes) {
			next = runes[i+1]
		}
		prev := rune(0)
		if i > 0 {
			prev = runes[i-1]
		}

		if c == '\\' && !inSingle && next != 0 {
			cur.WriteRune(c)
			cur.WriteRune(next)
			i++
			continue
		}

		switch {
		case c == '\'' && !inDouble:
			inSingle = !inSingle
		case c == '"' && !inSingle:
			inDouble = !inDouble
		case inSingle:
		case c == '`':
			res.substitution = true
		case c == '$' && next == '(':
			res.substitution = true
		}

		if inSingle || inDouble {
			cur.WriteRune(c)
			continue
		}

		switch c {
		case ';', '\n':
			flush(false)
		case '&':
			switch {
			case next == '&':
				i++
				flush(false)
			case prev == '>' || next == '>':
				cur.WriteRune(c)
			default:
				flush(false)
			}
		case '|':
			switch {
			case next == '|':
				i++
				flush(false)
			case prev == '>':
				cur.WriteRune(c)
			default:
				flush(true)
			}
		case '<':
			if next == '<' && (i+2 >= len(runes) || runes[i+2] != '<') {
				res.heredoc = true
			}
			if next == '(' {
				res.substitution = true
			}
			cur.WriteRune(c)
		default:
			cur.WriteRune(c)
		}
	}

	if inSingle || inDouble {
		res.balanced = false
	}
	flush(false)
	return res
}

// token is one shell word, or a redirection operator.
type token struct {
	text     string
	redirect bool
}

// tokenize splits one simple command into words, removing quotes and
// separating redirection operators from their targets.
func tokenize(s string) []token {
	var toks []token
	var cur strings.Builder
	has := false
	inSingle, inDouble := false, false
	runes := []rune(s)

	flush := func() {
		if has {
			toks = append(toks, token{text: cur.String()})
			cur.Reset()
			has = false
		}
	}

	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if inSingle {
			if c == '\'' {
				inSingle = false
			} else {
				cur.WriteRune(c)
			}
			continue
		}
		if inDouble {
			switch {
			case c == '"':
				inDouble = false
			case c == '\\' && i+1 < len(runes) && strings.ContainsRune("\"\\$`", runes[i+1]):
				cur.WriteRune(runes[i+1])
				i++
			default:
				cur.WriteRune(c)
			}
			continue
		}

		switch {
		case c == '\'':
			inSingle = true
			has = true
		case c == '"':
			inDouble = true
			has = true
		case c == '\\' && i+1 < len(runes):
			cur.WriteRune(runes[i+1])
			i++
			has = true
		case unicode.IsSpace(c):
			flush()
		case c == '>' || c == '<':
			op := ""
			if has && isFD(cur.String()) {
				op = cur.String()
				cur.Reset()
				has = false
			} else {
				flush()
			}
			op += string(c)
			for i+1 < len(runes) && (runes[i+1] == '>' || runes[i+1] == '<' || runes[i+1] == '&' || runes[i+1] == '|') {
				i++
				op += string(runes[i])
			}
			toks = append(toks, token{text: op, redirect: true})
		case c == '&' && i+1 < len(runes) && runes[i+1] == '>':
			flush()
			op := "&>"
			i++
			if i+1 < len(runes) && runes[i+1] == '>' {
				op += ">"
				i++
			}
			toks = append(toks, token{text: op, redirect: true})
		default:
			cur.WriteRune(c)
			has = true
		}
	}
	flush()
	return toks
}

func isFD(s string) bool {
	if s == "&" {
		return true
	}
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
