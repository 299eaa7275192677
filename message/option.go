package message

// Option is a function type that receives a HeaderSet and modifies it
// in place.
type Option func(HeaderSet)

// Header is an Option that adds a custom header. If multiple Header
// options are applied for the same key, the value of the last one
// applied is the value that appears in the set.
func Header(k, v string) Option {
	return func(hs HeaderSet) {
		hs[k] = v
	}
}

// Apply runs every option against hs and returns it.
func (hs HeaderSet) Apply(opts ...Option) HeaderSet {
	for _, o := range opts {
		o(hs)
	}
	return hs
}
