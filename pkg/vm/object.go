package vm

// Object owns string-keyed properties and a prototype link. Keys keep their
// insertion order for inspection and JSON output; for-in sorts them.
type Object struct {
	prototype  *Object
	properties map[string]Value
	keys       []string
	hidden     map[string]bool // non-enumerable keys
}

// NewObject creates an empty object delegating to proto (which may be nil).
func NewObject(proto *Object) *Object {
	return &Object{prototype: proto, properties: make(map[string]Value)}
}

// Prototype returns the prototype object, or nil at the root.
func (o *Object) Prototype() *Object {
	return o.prototype
}

// SetPrototype changes the prototype link. It refuses to create a cycle
// and reports whether the link was changed.
func (o *Object) SetPrototype(proto *Object) bool {
	for p := proto; p != nil; p = p.prototype {
		if p == o {
			return false
		}
	}
	o.prototype = proto
	return true
}

// GetOwn returns an own property.
func (o *Object) GetOwn(name string) (Value, bool) {
	v, ok := o.properties[name]
	return v, ok
}

// HasOwn reports whether name is an own property.
func (o *Object) HasOwn(name string) bool {
	_, ok := o.properties[name]
	return ok
}

// Lookup searches the object and then its prototype chain. The walk is a
// loop over the chain, which SetPrototype keeps acyclic.
func (o *Object) Lookup(name string) (Value, bool) {
	for cur := o; cur != nil; cur = cur.prototype {
		if v, ok := cur.properties[name]; ok {
			return v, true
		}
	}
	return Undefined, false
}

// SetOwn creates or updates an own property. Updating keeps the property's
// enumerability.
func (o *Object) SetOwn(name string, value Value) {
	if _, exists := o.properties[name]; !exists {
		o.keys = append(o.keys, name)
	}
	o.properties[name] = value
}

// DefineHidden creates or updates a non-enumerable own property.
func (o *Object) DefineHidden(name string, value Value) {
	o.SetOwn(name, value)
	if o.hidden == nil {
		o.hidden = make(map[string]bool)
	}
	o.hidden[name] = true
}

// DeleteOwn removes an own property and reports whether it existed.
func (o *Object) DeleteOwn(name string) bool {
	if _, ok := o.properties[name]; !ok {
		return false
	}
	delete(o.properties, name)
	delete(o.hidden, name)
	for i, k := range o.keys {
		if k == name {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

// IsEnumerable reports whether an own property shows up in enumeration.
func (o *Object) IsEnumerable(name string) bool {
	_, ok := o.properties[name]
	return ok && !o.hidden[name]
}

// OwnKeys returns enumerable own keys in insertion order.
func (o *Object) OwnKeys() []string {
	keys := make([]string, 0, len(o.keys))
	for _, k := range o.keys {
		if !o.hidden[k] {
			keys = append(keys, k)
		}
	}
	return keys
}
