package runtime

import (
	"fmt"
	"math"
	"strings"
)

const displayDepth = 2

// Display renders a value for the host: console output, the REPL and
// uncaught exception reports. Strings print raw at the top level and
// quoted when nested. Display never runs script code.
func Display(v *Value) string {
	if v == nil {
		return "undefined"
	}
	if v.Type == TypeString {
		return v.Str
	}
	if v.Type == TypeObject && v.Object.Class == ClassError {
		return errorSummary(v.Object)
	}
	var sb strings.Builder
	d := displayer{sb: &sb, seen: make(map[*Object]bool)}
	d.value(v, 0)
	return sb.String()
}

// Inspect renders like Display but quotes top-level strings.
func Inspect(v *Value) string {
	var sb strings.Builder
	d := displayer{sb: &sb, seen: make(map[*Object]bool)}
	d.value(v, 0)
	return sb.String()
}

type displayer struct {
	sb   *strings.Builder
	seen map[*Object]bool
}

func (d *displayer) value(v *Value, depth int) {
	switch v.Type {
	case TypeString:
		d.sb.WriteString(QuoteString(v.Str))
	case TypeNumber:
		d.sb.WriteString(displayNumber(v.Number))
	case TypeObject:
		d.object(v.Object, depth)
	default:
		d.sb.WriteString(primitiveToString(v))
	}
}

func displayNumber(f float64) string {
	if f == 0 && math.Signbit(f) {
		return "-0"
	}
	return NumberToString(f)
}

func (d *displayer) object(o *Object, depth int) {
	if d.seen[o] {
		d.sb.WriteString("[Circular]")
		return
	}
	switch o.Class {
	case ClassFunction:
		d.sb.WriteString(functionSummary(o))
		return
	case ClassError:
		d.sb.WriteString("[" + errorSummary(o) + "]")
		return
	case ClassRegExp:
		if s, ok := o.Internal.(fmt.Stringer); ok {
			d.sb.WriteString(s.String())
			return
		}
	case ClassBoolean, ClassNumber, ClassString, ClassSymbol:
		if o.Primitive != nil {
			d.sb.WriteString("[" + o.Class.String() + ": ")
			d.value(o.Primitive, depth+1)
			d.sb.WriteString("]")
			return
		}
	}

	isArray := o.Class == ClassArray
	if depth > displayDepth {
		if isArray {
			d.sb.WriteString("[Array]")
		} else {
			d.sb.WriteString("[Object]")
		}
		return
	}
	d.seen[o] = true
	defer delete(d.seen, o)

	var parts []string
	if isArray {
		n := 0
		if p, ok := o.props[lengthKey]; ok {
			n = int(p.Value.Number)
		}
		holes := 0
		for i := range n {
			p, ok := o.props[IndexKey(i)]
			if !ok {
				holes++
				continue
			}
			if holes > 0 {
				parts = append(parts, fmt.Sprintf("<%d empty items>", holes))
				holes = 0
			}
			parts = append(parts, d.propertyValue(p, depth))
		}
		if holes > 0 {
			parts = append(parts, fmt.Sprintf("<%d empty items>", holes))
		}
	}
	for _, k := range o.orderedKeys() {
		if isArray {
			if _, ok := k.ArrayIndex(); ok || k == lengthKey {
				continue
			}
		}
		p, ok := o.props[k]
		if !ok || !p.Enumerable {
			continue
		}
		parts = append(parts, displayKey(k)+": "+d.propertyValue(p, depth))
	}

	opening, closing := "{", "}"
	if isArray {
		opening, closing = "[", "]"
	}
	if len(parts) == 0 {
		d.sb.WriteString(opening + closing)
		return
	}
	d.sb.WriteString(opening + " " + strings.Join(parts, ", ") + " " + closing)
}

func (d *displayer) propertyValue(p *Property, depth int) string {
	if p.IsAccessor {
		switch {
		case p.Getter != nil && p.Setter != nil:
			return "[Getter/Setter]"
		case p.Getter != nil:
			return "[Getter]"
		default:
			return "[Setter]"
		}
	}
	var sb strings.Builder
	sub := displayer{sb: &sb, seen: d.seen}
	sub.value(p.Value, depth+1)
	return sb.String()
}

func displayKey(k PropertyKey) string {
	if k.IsSymbol() {
		return "[" + k.String() + "]"
	}
	name := k.Name()
	if isIdentifierName(name) {
		return name
	}
	return QuoteString(name)
}

func isIdentifierName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			continue
		}
		if i > 0 && r >= '0' && r <= '9' {
			continue
		}
		return false
	}
	return true
}

// peekData reads a data property along the chain without running
// accessors.
func peekData(o *Object, name string) *Value {
	key := StrKey(name)
	depth := 0
	for obj := o; obj != nil && depth < MaxPrototypeDepth; obj = obj.proto {
		depth++
		if p, ok := obj.props[key]; ok {
			if p.IsAccessor {
				return nil
			}
			return p.Value
		}
	}
	return nil
}

func functionSummary(o *Object) string {
	name := ""
	if v := peekData(o, "name"); v != nil && v.Type == TypeString {
		name = v.Str
	}
	if info, ok := o.Internal.(interface{ IsClassConstructor() bool }); ok && info.IsClassConstructor() {
		if name == "" {
			return "[class (anonymous)]"
		}
		return "[class " + name + "]"
	}
	if name == "" {
		return "[Function (anonymous)]"
	}
	return "[Function: " + name + "]"
}

// errorSummary renders "Name: message" from the error's own or inherited
// data properties.
func errorSummary(o *Object) string {
	name := "Error"
	if v := peekData(o, "name"); v != nil && v.Type == TypeString {
		name = v.Str
	}
	msg := ""
	if v := peekData(o, "message"); v != nil && v.Type == TypeString {
		msg = v.Str
	}
	switch {
	case msg == "":
		return name
	case name == "":
		return msg
	}
	return name + ": " + msg
}
