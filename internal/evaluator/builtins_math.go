package evaluator

import (
	"math"
)

func newMathLibrary() *Table {
	t := newLibrary(mathBuiltins)
	t.SetString("pi", NewNumber(math.Pi))
	t.SetString("huge", NewNumber(math.Inf(1)))
	return t
}

func mathUnary(name string, fn func(float64) float64) BuiltinFunction {
	return func(e *Evaluator, args ...Object) Object {
		x, err := checkNumber(name, args, 0)
		if err != nil {
			return err
		}
		return NewNumber(fn(x))
	}
}

var mathBuiltins = map[string]BuiltinFunction{
	"abs":   mathUnary("abs", math.Abs),
	"ceil":  mathUnary("ceil", math.Ceil),
	"floor": mathUnary("floor", math.Floor),
	"sqrt":  mathUnary("sqrt", math.Sqrt),
	"sin":   mathUnary("sin", math.Sin),
	"cos":   mathUnary("cos", math.Cos),
	"tan":   mathUnary("tan", math.Tan),
	"asin":  mathUnary("asin", math.Asin),
	"acos":  mathUnary("acos", math.Acos),
	"exp":   mathUnary("exp", math.Exp),
	"log10": mathUnary("log10", math.Log10),
	"deg":   mathUnary("deg", func(x float64) float64 { return x * 180 / math.Pi }),
	"rad":   mathUnary("rad", func(x float64) float64 { return x * math.Pi / 180 }),
	"atan": func(e *Evaluator, args ...Object) Object {
		y, err := checkNumber("atan", args, 0)
		if err != nil {
			return err
		}
		if argAt(args, 1) == NIL {
			return NewNumber(math.Atan(y))
		}
		x, err := checkNumber("atan", args, 1)
		if err != nil {
			return err
		}
		return NewNumber(math.Atan2(y, x))
	},
	"atan2": func(e *Evaluator, args ...Object) Object {
		y, err := checkNumber("atan2", args, 0)
		if err != nil {
			return err
		}
		x, err := checkNumber("atan2", args, 1)
		if err != nil {
			return err
		}
		return NewNumber(math.Atan2(y, x))
	},
	"pow": func(e *Evaluator, args ...Object) Object {
		x, err := checkNumber("pow", args, 0)
		if err != nil {
			return err
		}
		y, err := checkNumber("pow", args, 1)
		if err != nil {
			return err
		}
		return NewNumber(math.Pow(x, y))
	},
	"fmod": func(e *Evaluator, args ...Object) Object {
		x, err := checkNumber("fmod", args, 0)
		if err != nil {
			return err
		}
		y, err := checkNumber("fmod", args, 1)
		if err != nil {
			return err
		}
		return NewNumber(math.Mod(x, y))
	},
	"modf": func(e *Evaluator, args ...Object) Object {
		x, err := checkNumber("modf", args, 0)
		if err != nil {
			return err
		}
		ip, frac := math.Modf(x)
		return Multi(NewNumber(ip), NewNumber(frac))
	},
	"log": func(e *Evaluator, args ...Object) Object {
		x, err := checkNumber("log", args, 0)
		if err != nil {
			return err
		}
		if argAt(args, 1) == NIL {
			return NewNumber(math.Log(x))
		}
		base, err := checkNumber("log", args, 1)
		if err != nil {
			return err
		}
		return NewNumber(math.Log(x) / math.Log(base))
	},
	"min": func(e *Evaluator, args ...Object) Object {
		return mathFold("min", args, func(a, b float64) bool { return b < a })
	},
	"max": func(e *Evaluator, args ...Object) Object {
		return mathFold("max", args, func(a, b float64) bool { return b > a })
	},
	"clamp": func(e *Evaluator, args ...Object) Object {
		v, err := checkNumber("clamp", args, 0)
		if err != nil {
			return err
		}
		lo, err := checkNumber("clamp", args, 1)
		if err != nil {
			return err
		}
		hi, err := checkNumber("clamp", args, 2)
		if err != nil {
			return err
		}
		return NewNumber(math.Min(math.Max(v, lo), hi))
	},
	// random() is in [0,1), random(m) in [1,m], random(m,n) in [m,n].
	"random": func(e *Evaluator, args ...Object) Object {
		switch len(args) {
		case 0:
			return NewNumber(e.Rand.Float64())
		case 1:
			m, err := checkNumber("random", args, 0)
			if err != nil {
				return err
			}
			if m < 1 {
				return newError(TypeMismatch, "bad argument #1 to 'random' (interval is empty)")
			}
			return NewNumber(float64(1 + e.Rand.Int63n(int64(m))))
		default:
			m, err := checkNumber("random", args, 0)
			if err != nil {
				return err
			}
			n, err := checkNumber("random", args, 1)
			if err != nil {
				return err
			}
			if n < m {
				return newError(TypeMismatch, "bad argument #2 to 'random' (interval is empty)")
			}
			return NewNumber(m + float64(e.Rand.Int63n(int64(n-m)+1)))
		}
	},
	"randomseed": func(e *Evaluator, args ...Object) Object {
		seed, err := checkNumber("randomseed", args, 0)
		if err != nil {
			return err
		}
		e.Rand.Seed(int64(seed))
		return NIL
	},
}

func mathFold(name string, args []Object, better func(a, b float64) bool) Object {
	best, err := checkNumber(name, args, 0)
	if err != nil {
		return err
	}
	for i := 1; i < len(args); i++ {
		v, err := checkNumber(name, args, i)
		if err != nil {
			return err
		}
		if better(best, v) {
			best = v
		}
	}
	return NewNumber(best)
}
