package evaluator

import (
	"fmt"
	"strconv"
	"strings"
)

// strIndex converts a 1-based, possibly negative position into a 0-based
// offset clamped to [0, n].
func strIndex(pos float64, n int) int {
	p := int(pos)
	if p < 0 {
		p = n + p + 1
	}
	if p < 1 {
		return 0
	}
	if p > n {
		return n
	}
	return p - 1
}

var stringBuiltins = map[string]BuiltinFunction{
	"len": func(e *Evaluator, args ...Object) Object {
		s, err := checkString("len", args, 0)
		if err != nil {
			return err
		}
		return NewNumber(float64(len(s)))
	},
	"upper": func(e *Evaluator, args ...Object) Object {
		s, err := checkString("upper", args, 0)
		if err != nil {
			return err
		}
		return NewString(strings.ToUpper(s))
	},
	"lower": func(e *Evaluator, args ...Object) Object {
		s, err := checkString("lower", args, 0)
		if err != nil {
			return err
		}
		return NewString(strings.ToLower(s))
	},
	"reverse": func(e *Evaluator, args ...Object) Object {
		s, err := checkString("reverse", args, 0)
		if err != nil {
			return err
		}
		b := []byte(s)
		for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
			b[i], b[j] = b[j], b[i]
		}
		return NewString(string(b))
	},
	"sub": func(e *Evaluator, args ...Object) Object {
		s, err := checkString("sub", args, 0)
		if err != nil {
			return err
		}
		i, err := optNumber("sub", args, 1, 1)
		if err != nil {
			return err
		}
		j, err := optNumber("sub", args, 2, -1)
		if err != nil {
			return err
		}
		n := len(s)
		start := int(i)
		if start < 0 {
			start = n + start + 1
		}
		if start < 1 {
			start = 1
		}
		end := int(j)
		if end < 0 {
			end = n + end + 1
		}
		if end > n {
			end = n
		}
		if start > end {
			return NewString("")
		}
		return NewString(s[start-1 : end])
	},
	"rep": func(e *Evaluator, args ...Object) Object {
		s, err := checkString("rep", args, 0)
		if err != nil {
			return err
		}
		n, err := checkNumber("rep", args, 1)
		if err != nil {
			return err
		}
		if n < 1 {
			return NewString("")
		}
		sep := ""
		if argAt(args, 2) != NIL {
			if sep, err = checkString("rep", args, 2); err != nil {
				return err
			}
		}
		parts := make([]string, int(n))
		for i := range parts {
			parts[i] = s
		}
		return NewString(strings.Join(parts, sep))
	},
	"byte": func(e *Evaluator, args ...Object) Object {
		s, err := checkString("byte", args, 0)
		if err != nil {
			return err
		}
		i, err := optNumber("byte", args, 1, 1)
		if err != nil {
			return err
		}
		j, err := optNumber("byte", args, 2, i)
		if err != nil {
			return err
		}
		start, end := int(i), int(j)
		if start < 0 {
			start = len(s) + start + 1
		}
		if end < 0 {
			end = len(s) + end + 1
		}
		if start < 1 {
			start = 1
		}
		if end > len(s) {
			end = len(s)
		}
		var out []Object
		for k := start; k <= end; k++ {
			out = append(out, NewNumber(float64(s[k-1])))
		}
		return &VarArgs{Values: out}
	},
	"char": func(e *Evaluator, args ...Object) Object {
		b := make([]byte, len(args))
		for i := range args {
			n, err := checkNumber("char", args, i)
			if err != nil {
				return err
			}
			b[i] = byte(n)
		}
		return NewString(string(b))
	},
	"format": func(e *Evaluator, args ...Object) Object {
		f, err := checkString("format", args, 0)
		if err != nil {
			return err
		}
		return formatString(f, args[1:])
	},
	"find": func(e *Evaluator, args ...Object) Object {
		return stringFind(args, true)
	},
	"match": func(e *Evaluator, args ...Object) Object {
		return stringFind(args, false)
	},
	"gmatch": stringGmatch,
	"gsub":   stringGsub,
}

// stringFind implements find (positions plus captures) and match
// (captures, or the whole match when there are none).
func stringFind(args []Object, find bool) Object {
	fname := "match"
	if find {
		fname = "find"
	}
	s, err := checkString(fname, args, 0)
	if err != nil {
		return err
	}
	pat, err := checkString(fname, args, 1)
	if err != nil {
		return err
	}
	from, err := optNumber(fname, args, 2, 1)
	if err != nil {
		return err
	}
	offset := strIndex(from, len(s))
	if from > float64(len(s)+1) {
		return NIL
	}
	plain := find && IsTruthy(argAt(args, 3))
	if find && (plain || !hasPatternSpecials(pat)) {
		idx := strings.Index(s[offset:], pat)
		if idx < 0 {
			return NIL
		}
		start := offset + idx
		return Multi(NewNumber(float64(start+1)), NewNumber(float64(start+len(pat))))
	}
	matches, perr := findPattern(pat, s, offset, 1)
	if perr != nil {
		return newError(RuntimeError, "%s: %v", fname, perr)
	}
	if len(matches) == 0 {
		return NIL
	}
	m := matches[0]
	if find {
		out := []Object{NewNumber(float64(m.start + 1)), NewNumber(float64(m.end))}
		return Multi(append(out, m.caps...)...)
	}
	return Multi(m.values(s)...)
}

func stringGmatch(e *Evaluator, args ...Object) Object {
	s, err := checkString("gmatch", args, 0)
	if err != nil {
		return err
	}
	pat, err := checkString("gmatch", args, 1)
	if err != nil {
		return err
	}
	matches, perr := findPattern(pat, s, 0, -1)
	if perr != nil {
		return newError(RuntimeError, "gmatch: %v", perr)
	}
	next := 0
	return &Builtin{Name: "gmatch_iterator", Fn: func(e *Evaluator, _ ...Object) Object {
		if next >= len(matches) {
			return NIL
		}
		m := matches[next]
		next++
		return Multi(m.values(s)...)
	}}
}

func stringGsub(e *Evaluator, args ...Object) Object {
	s, err := checkString("gsub", args, 0)
	if err != nil {
		return err
	}
	pat, err := checkString("gsub", args, 1)
	if err != nil {
		return err
	}
	limit := -1
	if argAt(args, 3) != NIL {
		n, err := checkNumber("gsub", args, 3)
		if err != nil {
			return err
		}
		limit = int(n)
	}
	matches, perr := findPattern(pat, s, 0, limit)
	if perr != nil {
		return newError(RuntimeError, "gsub: %v", perr)
	}
	repl := argAt(args, 2)

	var b strings.Builder
	count := 0
	last := 0
	for _, m := range matches {
		whole := s[m.start:m.end]
		caps := m.values(s)
		var replacement Object
		switch r := repl.(type) {
		case *String, *Number:
			str, _ := checkString("gsub", args, 2)
			replacement = NewString(expandReplacement(str, whole, caps))
		case *Table:
			replacement = r.Get(caps[0])
		case *Function, *Builtin:
			res := First(e.Call(r, caps...))
			if IsAbort(res) {
				return res
			}
			replacement = res
		default:
			return argError("gsub", 2, "string/function/table", repl)
		}
		b.WriteString(s[last:m.start])
		if IsTruthy(replacement) {
			b.WriteString(toDisplayString(replacement))
		} else {
			b.WriteString(whole)
		}
		last = m.end
		count++
	}
	b.WriteString(s[last:])
	return Multi(NewString(b.String()), NewNumber(float64(count)))
}

// expandReplacement substitutes %0..%9 and %% in a gsub replacement string.
func expandReplacement(repl, whole string, caps []Object) string {
	var b strings.Builder
	for i := 0; i < len(repl); i++ {
		c := repl[i]
		if c != '%' || i+1 >= len(repl) {
			b.WriteByte(c)
			continue
		}
		i++
		d := repl[i]
		switch {
		case d == '0':
			b.WriteString(whole)
		case d >= '1' && d <= '9':
			if k := int(d - '1'); k < len(caps) {
				b.WriteString(toDisplayString(caps[k]))
			}
		default:
			b.WriteByte(d)
		}
	}
	return b.String()
}

// formatString implements string.format for the d i u c x X o e E f g G q
// s and %% conversions.
func formatString(f string, args []Object) Object {
	var b strings.Builder
	argi := 0
	next := func() Object {
		v := argAt(args, argi)
		argi++
		return v
	}
	for i := 0; i < len(f); i++ {
		c := f[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		j := i + 1
		for j < len(f) && strings.IndexByte("-+ #0123456789.", f[j]) >= 0 {
			j++
		}
		if j >= len(f) {
			return newError(RuntimeError, "invalid format string to 'format' (ends with '%%')")
		}
		spec := f[i+1 : j]
		verb := f[j]
		i = j
		switch verb {
		case '%':
			b.WriteByte('%')
		case 'd', 'i', 'u', 'c', 'x', 'X', 'o':
			v := next()
			n, ok := toNumber(v)
			if !ok {
				return argError("format", argi, "number", v)
			}
			switch verb {
			case 'c':
				b.WriteByte(byte(n))
			case 'd', 'i', 'u':
				fmt.Fprintf(&b, "%"+spec+"d", int64(n))
			default:
				fmt.Fprintf(&b, "%"+spec+string(verb), int64(n))
			}
		case 'e', 'E', 'f', 'g', 'G':
			v := next()
			n, ok := toNumber(v)
			if !ok {
				return argError("format", argi, "number", v)
			}
			fmt.Fprintf(&b, "%"+spec+string(verb), n)
		case 's':
			fmt.Fprintf(&b, "%"+spec+"s", toDisplayString(next()))
		case 'q':
			b.WriteString(strconv.Quote(toDisplayString(next())))
		default:
			return newError(RuntimeError, "invalid option '%%%c' to 'format'", verb)
		}
	}
	return NewString(b.String())
}
