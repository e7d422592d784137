package runtime

// NewArray creates an array object holding elems.
func NewArray(proto *Object, elems []*Value) *Object {
	arr := NewObjectOfClass(ClassArray, proto)
	arr.props[lengthKey] = &Property{Value: NewNumber(0), Writable: true}
	for i, v := range elems {
		arr.CreateDataProperty(IndexKey(i), orUndefined(v))
	}
	return arr
}

// IsArray reports whether v is an array object.
func IsArray(v *Value) bool {
	return v.IsObject() && v.Object.Class == ClassArray
}

// LengthOf reads the length property of an array-like object.
func LengthOf(obj *Object) (int, error) {
	v, err := obj.Get(lengthKey)
	if err != nil {
		return 0, err
	}
	n, err := ToLength(v)
	return int(n), err
}

// ListFromArrayLike copies the indexed elements of an array-like object.
func ListFromArrayLike(v *Value) ([]*Value, error) {
	if v.IsNullish() {
		return nil, nil
	}
	if !v.IsObject() {
		return nil, NewTypeError("CreateListFromArrayLike called on non-object")
	}
	n, err := LengthOf(v.Object)
	if err != nil {
		return nil, err
	}
	out := make([]*Value, n)
	for i := range n {
		if out[i], err = v.Object.Get(IndexKey(i)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Iterator is an open iterator record.
type Iterator struct {
	obj  *Object
	next *Value
	Done bool
}

// GetIterator calls v's @@iterator method and reads its next method.
func (r *Realm) GetIterator(v *Value) (*Iterator, error) {
	iterFn, err := GetMethod(r, v, SymKey(SymIterator))
	if err != nil {
		return nil, err
	}
	if iterFn == nil {
		return nil, NewTypeError("%s is not iterable", Typeof(v))
	}
	it, err := iterFn.Call(v, nil)
	if err != nil {
		return nil, err
	}
	if !it.IsObject() {
		return nil, NewTypeError("Result of the Symbol.iterator method is not an object")
	}
	next, err := it.Object.Get(StrKey("next"))
	if err != nil {
		return nil, err
	}
	if !IsCallable(next) {
		return nil, NewTypeError("iterator.next is not a function")
	}
	return &Iterator{obj: it.Object, next: next}, nil
}

// Step pulls the next value. It reports false once the iterator is done;
// an error also marks the iterator done, so it is not closed afterwards.
func (it *Iterator) Step() (*Value, bool, error) {
	if it.Done {
		return Undefined, false, nil
	}
	it.Done = true
	res, err := it.next.Object.Call(NewObject(it.obj), nil)
	if err != nil {
		return nil, false, err
	}
	if !res.IsObject() {
		return nil, false, NewTypeError("Iterator result %s is not an object", Display(res))
	}
	done, err := res.Object.Get(StrKey("done"))
	if err != nil {
		return nil, false, err
	}
	if done.ToBoolean() {
		return Undefined, false, nil
	}
	val, err := res.Object.Get(StrKey("value"))
	if err != nil {
		return nil, false, err
	}
	it.Done = false
	return val, true, nil
}

// Close calls the iterator's return method unless it is already done.
func (it *Iterator) Close() {
	if it.Done {
		return
	}
	it.Done = true
	ret, err := it.obj.Get(StrKey("return"))
	if err != nil || !IsCallable(ret) {
		return
	}
	ret.Object.Call(NewObject(it.obj), nil)
}

// Iterate runs the iteration protocol over v, calling fn for each produced
// value until fn returns false or the iterator is exhausted. Stopping early
// or failing inside fn closes the iterator.
func (r *Realm) Iterate(v *Value, fn func(*Value) (bool, error)) error {
	it, err := r.GetIterator(v)
	if err != nil {
		return err
	}
	for {
		val, ok, err := it.Step()
		if err != nil || !ok {
			return err
		}
		more, ferr := fn(val)
		if ferr != nil || !more {
			it.Close()
			return ferr
		}
	}
}

// IterResult builds a { value, done } object.
func (r *Realm) IterResult(v *Value, done bool) *Value {
	obj := r.NewPlainObject()
	obj.CreateDataProperty(StrKey("value"), orUndefined(v))
	obj.CreateDataProperty(StrKey("done"), NewBool(done))
	return NewObject(obj)
}
