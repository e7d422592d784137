package runtime

// Attr is a set of property attribute flags.
type Attr uint8

const (
	Writable Attr = 1 << iota
	Enumerable
	Configurable

	// AttrDefault is what assignment and object literals create.
	AttrDefault = Writable | Enumerable | Configurable
	// AttrHidden is used for built-in methods.
	AttrHidden      = Writable | Configurable
	AttrNone   Attr = 0
)

// Property is a stored descriptor: exactly one of a data descriptor
// (Value, Writable) or an accessor descriptor (Getter, Setter), plus the
// shared Enumerable and Configurable flags.
type Property struct {
	Value        *Value
	Getter       *Object
	Setter       *Object
	Writable     bool
	Enumerable   bool
	Configurable bool
	IsAccessor   bool

	order uint64
}

// Descriptor returns the complete partial-form descriptor for p.
func (p *Property) Descriptor() PropertyDescriptor {
	d := PropertyDescriptor{
		Enumerable:      p.Enumerable,
		Configurable:    p.Configurable,
		HasEnumerable:   true,
		HasConfigurable: true,
	}
	if p.IsAccessor {
		d.Get, d.Set = p.Getter, p.Setter
		d.HasGet, d.HasSet = true, true
		return d
	}
	d.Value, d.Writable = p.Value, p.Writable
	d.HasValue, d.HasWritable = true, true
	return d
}

// PropertyDescriptor is the partial descriptor accepted by
// DefineOwnProperty. Each field only counts when its Has flag is set.
type PropertyDescriptor struct {
	Value        *Value
	Get          *Object
	Set          *Object
	Writable     bool
	Enumerable   bool
	Configurable bool

	HasValue        bool
	HasWritable     bool
	HasGet          bool
	HasSet          bool
	HasEnumerable   bool
	HasConfigurable bool
}

// DataDescriptor builds a complete data descriptor.
func DataDescriptor(v *Value, attrs Attr) PropertyDescriptor {
	return PropertyDescriptor{
		Value:           v,
		Writable:        attrs&Writable != 0,
		Enumerable:      attrs&Enumerable != 0,
		Configurable:    attrs&Configurable != 0,
		HasValue:        true,
		HasWritable:     true,
		HasEnumerable:   true,
		HasConfigurable: true,
	}
}

// AccessorDescriptor builds a complete accessor descriptor. A nil getter
// or setter means the accessor is absent.
func AccessorDescriptor(get, set *Object, attrs Attr) PropertyDescriptor {
	return PropertyDescriptor{
		Get:             get,
		Set:             set,
		Enumerable:      attrs&Enumerable != 0,
		Configurable:    attrs&Configurable != 0,
		HasGet:          true,
		HasSet:          true,
		HasEnumerable:   true,
		HasConfigurable: true,
	}
}

func (d PropertyDescriptor) IsAccessor() bool { return d.HasGet || d.HasSet }
func (d PropertyDescriptor) IsData() bool     { return d.HasValue || d.HasWritable }
func (d PropertyDescriptor) IsGeneric() bool  { return !d.IsAccessor() && !d.IsData() }

// toProperty materializes a new stored property, filling absent fields
// with their defaults.
func (d PropertyDescriptor) toProperty() *Property {
	p := &Property{
		Enumerable:   d.Enumerable && d.HasEnumerable,
		Configurable: d.Configurable && d.HasConfigurable,
	}
	if d.IsAccessor() {
		p.IsAccessor = true
		p.Getter, p.Setter = d.Get, d.Set
		return p
	}
	p.Value = d.Value
	if !d.HasValue || p.Value == nil {
		p.Value = Undefined
	}
	p.Writable = d.Writable && d.HasWritable
	return p
}
