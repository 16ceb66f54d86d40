package env

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var variablePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// WarnFunc is a function type for handling warnings
type WarnFunc func(format string, args ...any)

// Resolver interpolates {{key}} placeholders from a Context and {{$VAR}}
// placeholders from the process environment.
type Resolver struct {
	vars     *Context
	warnFunc WarnFunc
	escape   func(string) string
}

func NewResolver(vars *Context) *Resolver {
	if vars == nil {
		vars = NewContext()
	}
	return &Resolver{vars: vars}
}

// SetWarnFunc sets a function to be called when a placeholder stays unresolved
func (r *Resolver) SetWarnFunc(fn WarnFunc) {
	r.warnFunc = fn
}

// SetEscape sets a function applied to every context value before it is
// substituted, such as url.PathEscape for path segments. Environment values
// are substituted as-is.
func (r *Resolver) SetEscape(fn func(string) string) {
	r.escape = fn
}

func (r *Resolver) warn(format string, args ...any) {
	if r.warnFunc != nil {
		r.warnFunc(format, args...)
	}
}

// Resolve replaces every known placeholder and leaves unknown ones verbatim.
func (r *Resolver) Resolve(input string) string {
	return variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		expr := strings.TrimSpace(match[2 : len(match)-2])

		if strings.HasPrefix(expr, "$") {
			envVar := expr[1:]
			if val := os.Getenv(envVar); val != "" {
				return val
			}
			r.warn("unresolved environment variable: $%s", envVar)
			return match
		}

		if val, ok := r.vars.Get(expr); ok {
			s := fmt.Sprintf("%v", val)
			if r.escape != nil {
				s = r.escape(s)
			}
			return s
		}

		r.warn("unresolved variable: %s", expr)
		return match
	})
}

// Unresolved lists the placeholder names in input that the resolver cannot fill.
func (r *Resolver) Unresolved(input string) []string {
	var missing []string
	for _, m := range variablePattern.FindAllStringSubmatch(input, -1) {
		expr := strings.TrimSpace(m[1])
		if strings.HasPrefix(expr, "$") {
			if os.Getenv(expr[1:]) == "" {
				missing = append(missing, expr)
			}
			continue
		}
		if !r.vars.Has(expr) {
			missing = append(missing, expr)
		}
	}
	return missing
}

// Placeholders lists the context keys referenced by a template, ignoring
// environment references.
func Placeholders(input string) []string {
	var keys []string
	for _, m := range variablePattern.FindAllStringSubmatch(input, -1) {
		expr := strings.TrimSpace(m[1])
		if !strings.HasPrefix(expr, "$") {
			keys = append(keys, expr)
		}
	}
	return keys
}
