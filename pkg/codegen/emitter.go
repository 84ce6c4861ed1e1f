package codegen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"runa/pkg/ast"
	"runa/pkg/builtins"
	"runa/pkg/patterns"
	"runa/pkg/types"
)

const indentUnit = "    "

// Option configures Generate.
type Option func(*options)

type options struct {
	types  *types.Result
	header bool
}

// WithTypes adds the inferred type of each declaration as a trailing comment.
func WithTypes(r *types.Result) Option {
	return func(o *options) { o.types = r }
}

// WithoutRuntimeHeader omits the runtime import (Python) or inline shim
// (JavaScript) from the output.
func WithoutRuntimeHeader() Option {
	return func(o *options) { o.header = false }
}

// Generate emits prog as source code of target.
func Generate(prog *ast.Program, target Target, opts ...Option) (code string, err error) {
	o := options{header: true}
	for _, opt := range opts {
		opt(&o)
	}

	defer func() {
		if r := recover(); r != nil {
			defect, ok := r.(ast.GeneratorDefect)
			if !ok {
				panic(r)
			}
			code, err = "", errors.Wrapf(defect, "generating %s", target)
		}
	}()

	switch target {
	case Python:
		g := newPythonGenerator(o)
		return g.generate(prog)
	case JavaScript:
		g := newJavaScriptGenerator(o)
		return g.generate(prog)
	}
	return "", &UnsupportedTargetError{Name: string(target)}
}

// emitter holds the output buffer, indentation and name scopes shared by
// both generators.
type emitter struct {
	out     strings.Builder
	indent  int
	matches int
	// reserved holds target keywords; runtime holds names the runtime or
	// emitted code relies on. User bindings of either get a trailing "_".
	reserved map[string]bool
	runtime  map[string]bool
	scope    *scope
	fresh    map[string]int
	opts     options
	err      error
}

// scope maps the Runa names bound in one block to their emitted names.
type scope struct {
	parent   *scope
	names    map[string]string
	function bool
	// global and nonlocal collect emitted names a Python def assigns but
	// does not own.
	global   map[string]bool
	nonlocal map[string]bool
}

func newEmitter(reserved, runtime map[string]bool, o options) emitter {
	return emitter{reserved: reserved, runtime: runtime, fresh: make(map[string]int), opts: o}
}

// runtimeNames returns every builtin name plus extra.
func runtimeNames(extra ...string) map[string]bool {
	m := wordSet(builtins.Names()...)
	for _, x := range extra {
		m[x] = true
	}
	return m
}

func (e *emitter) line(format string, args ...any) {
	for i := 0; i < e.indent; i++ {
		e.out.WriteString(indentUnit)
	}
	fmt.Fprintf(&e.out, format, args...)
	e.out.WriteByte('\n')
}

func (e *emitter) raw(s string) {
	e.out.WriteString(s)
}

// nested runs fn one indentation level deeper.
func (e *emitter) nested(fn func()) {
	e.indent++
	fn()
	e.indent--
}

func (e *emitter) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *emitter) result() (string, error) {
	if e.err != nil {
		return "", e.err
	}
	return e.out.String(), nil
}

// ident renames identifiers that are reserved in the target language.
func (e *emitter) ident(name string) string {
	if e.reserved[name] {
		return name + "_"
	}
	return name
}

// local returns the spelling of a user binding of name, clear of target
// keywords, runtime names and generated temporaries.
func (e *emitter) local(name string) string {
	if e.reserved[name] || e.runtime[name] || strings.HasPrefix(name, "__") {
		return name + "_"
	}
	return name
}

func (e *emitter) push(function bool) {
	e.scope = &scope{
		parent:   e.scope,
		names:    make(map[string]string),
		function: function,
		global:   make(map[string]bool),
		nonlocal: make(map[string]bool),
	}
}

func (e *emitter) pop() {
	e.scope = e.scope.parent
}

// scoped runs fn inside a new block scope.
func (e *emitter) scoped(fn func()) {
	e.push(false)
	fn()
	e.pop()
}

// lookup returns the emitted name of the visible binding of name and the
// scope holding it. The scope is nil when name is not bound.
func (e *emitter) lookup(name string) (string, *scope) {
	for s := e.scope; s != nil; s = s.parent {
		if out, ok := s.names[name]; ok {
			return out, s
		}
	}
	return "", nil
}

// visible reports whether out is the emitted name of a visible binding.
func (e *emitter) visible(out string) bool {
	for s := e.scope; s != nil; s = s.parent {
		for _, v := range s.names {
			if v == out {
				return true
			}
		}
	}
	return false
}

// bind declares name in the current scope and returns its emitted name. A
// binding that shadows a visible one gets a fresh spelling such as x_1.
func (e *emitter) bind(name string) string {
	out := e.local(name)
	if _, s := e.lookup(name); s != nil || e.visible(out) {
		stem := strings.TrimSuffix(out, "_")
		for {
			e.fresh[stem]++
			out = fmt.Sprintf("%s_%d", stem, e.fresh[stem])
			if !e.visible(out) {
				break
			}
		}
	}
	e.scope.names[name] = out
	return out
}

// bindParams declares parameters in the current scope. Parameters keep
// their plain spelling so named arguments still match them.
func (e *emitter) bindParams(params []string) []string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = e.local(p)
		e.scope.names[p] = out[i]
	}
	return out
}

// ref returns the emitted name a reference to name resolves to. Unbound
// builtins keep their runtime spelling.
func (e *emitter) ref(name string) string {
	if out, s := e.lookup(name); s != nil {
		return out
	}
	if e.runtime[name] {
		return name
	}
	return e.ident(name)
}

// bound reports whether name resolves to a user binding.
func (e *emitter) bound(name string) bool {
	_, s := e.lookup(name)
	return s != nil
}

// owner returns the innermost function scope enclosing s.
func owner(s *scope) *scope {
	for s != nil && !s.function {
		s = s.parent
	}
	return s
}

// nextMatch returns a fresh temporary for a match scrutinee.
func (e *emitter) nextMatch() string {
	e.matches++
	return fmt.Sprintf("__match_%d", e.matches)
}

// inferred returns the trailing type comment text for s, if types are known.
func (e *emitter) inferred(s ast.Stmt) (string, bool) {
	if e.opts.types == nil {
		return "", false
	}
	t, ok := e.opts.types.Inferred[s]
	if !ok {
		return "", false
	}
	return "inferred: " + t.String(), true
}

func (e *emitter) compileMatch(s *ast.MatchStatement) (*patterns.Match, bool) {
	m, err := patterns.Compile(s)
	if err != nil {
		e.fail(errors.Wrapf(err, "line %d", s.Line))
		return nil, false
	}
	return m, true
}

func wordSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// quote renders s as a double-quoted literal valid in both targets.
func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f || r == 0x2028 || r == 0x2029 {
				fmt.Fprintf(&sb, `\u%04x`, r)
			} else {
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func signature(d *ast.TypedProcessDefinition) string {
	var sb strings.Builder
	if len(d.Generics) > 0 {
		names := make([]string, len(d.Generics))
		for i, g := range d.Generics {
			names[i] = g.Name
		}
		sb.WriteString("[" + strings.Join(names, ", ") + "] ")
	}
	params := make([]string, len(d.Parameters))
	for i, p := range d.Parameters {
		if p.Type == nil {
			params[i] = p.Name
		} else {
			params[i] = p.Name + ": " + p.Type.String()
		}
	}
	sb.WriteString("(" + strings.Join(params, ", ") + ")")
	if d.Returns != nil {
		sb.WriteString(" -> " + d.Returns.String())
	}
	return sb.String()
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
