package validation

// Batch accumulates the errors of one rule evaluation. The zero value is
// ready to use.
type Batch struct {
	errs []*FieldError
}

// Add appends fe. It always returns false so rules can end with
// `return b.Add(...)`.
func (b *Batch) Add(fe *FieldError) bool {
	b.errs = append(b.errs, fe)
	return false
}

func (b *Batch) Reset() { b.errs = b.errs[:0] }
func (b *Batch) OK() bool { return len(b.errs) == 0 }
func (b *Batch) Len() int { return len(b.errs) }

// Errors returns a copy of the accumulated errors.
func (b *Batch) Errors() []*FieldError {
	out := make([]*FieldError, len(b.errs))
	copy(out, b.errs)
	return out
}

// Fields lists the field names of the accumulated errors in order.
func (b *Batch) Fields() []string {
	out := make([]string, len(b.errs))
	for i, fe := range b.errs {
		out[i] = fe.field
	}
	return out
}

// Err returns nil for an empty batch and an *Exception otherwise.
func (b *Batch) Err() error {
	if b.OK() {
		return nil
	}
	return &Exception{Errors: b.Errors()}
}
