package runtime

// Reference is a resolved assignable location: either a binding in an
// environment record or a property of a base value. It is built and
// consumed within one evaluation step.
type Reference struct {
	env    Environment
	base   *Value
	key    PropertyKey
	name   string
	this   *Value
	strict bool
}

// NewPropertyReference builds a reference to base[key]. The base may be a
// primitive; it is boxed for lookup but kept as the receiver.
func NewPropertyReference(base *Value, key PropertyKey, strict bool) Reference {
	return Reference{base: base, key: key, name: key.String(), strict: strict}
}

// NewSuperReference builds a reference to home[key] whose accessors and
// writes use this as the receiver.
func NewSuperReference(home *Value, key PropertyKey, this *Value, strict bool) Reference {
	return Reference{base: home, key: key, name: key.String(), this: this, strict: strict}
}

// Receiver is the this value for property accessors and method calls.
func (ref Reference) Receiver() *Value {
	if ref.this != nil {
		return ref.this
	}
	return ref.base
}

func (ref Reference) IsPropertyReference() bool { return ref.base != nil }
func (ref Reference) IsUnresolvable() bool      { return ref.base == nil && ref.env == nil }
func (ref Reference) Base() *Value              { return ref.base }
func (ref Reference) Key() PropertyKey          { return ref.key }
func (ref Reference) Name() string              { return ref.name }
func (ref Reference) Env() Environment          { return ref.env }

// Read dereferences the location.
func (ref Reference) Read(r *Realm) (*Value, error) {
	switch {
	case ref.env != nil:
		return ref.env.GetBindingValue(ref.name)
	case ref.base != nil:
		if ref.base.IsObject() {
			return ref.base.Object.GetWithReceiver(ref.key, ref.Receiver())
		}
		obj, err := r.ToObject(ref.base)
		if err != nil {
			return nil, NewTypeError("Cannot read properties of %s (reading '%s')", Display(ref.base), ref.key.String())
		}
		return obj.GetWithReceiver(ref.key, ref.Receiver())
	}
	return nil, NewReferenceError("%s is not defined", ref.name)
}

// Write stores v at the location. Failed property writes are silent
// unless the reference is strict.
func (ref Reference) Write(r *Realm, v *Value) error {
	switch {
	case ref.env != nil:
		return ref.env.SetMutableBinding(ref.name, v, ref.strict)
	case ref.base != nil:
		var obj *Object
		if ref.base.IsObject() {
			obj = ref.base.Object
		} else {
			boxed, err := r.ToObject(ref.base)
			if err != nil {
				return NewTypeError("Cannot set properties of %s (setting '%s')", Display(ref.base), ref.key.String())
			}
			obj = boxed
		}
		ok, err := obj.Set(ref.key, v, ref.Receiver())
		if err != nil {
			return err
		}
		if !ok && ref.strict {
			return NewTypeError("Cannot assign to read only property '%s' of %s", ref.key.String(), Typeof(ref.base))
		}
		return nil
	}
	if ref.strict {
		return NewReferenceError("%s is not defined", ref.name)
	}
	_, err := r.GlobalObject.Set(StrKey(ref.name), v, NewObject(r.GlobalObject))
	return err
}

// Delete implements the delete operator on the location.
func (ref Reference) Delete(r *Realm) (bool, error) {
	switch {
	case ref.env != nil:
		return false, nil
	case ref.base != nil:
		obj, err := r.ToObject(ref.base)
		if err != nil {
			return false, err
		}
		ok := obj.Delete(ref.key)
		if !ok && ref.strict {
			return false, NewTypeError("Cannot delete property '%s' of %s", ref.key.String(), Display(ref.base))
		}
		return ok, nil
	}
	return true, nil
}
