package editor

// FormValue is the "Done" control of an edit session. Closing is deferred
// until the value is valid; an invalid value switches the session into forced
// validation, where every invalid field is reported.
type FormValue struct {
	isValid         bool
	onClose         func()
	forceValidation bool
}

// NewFormValue returns the control for a value whose validity is isValid.
func NewFormValue(isValid bool, onClose func()) *FormValue {
	return &FormValue{isValid: isValid, onClose: onClose}
}

// Done closes the session when the value is valid and reports whether it did.
func (f *FormValue) Done() bool {
	if !f.isValid {
		f.forceValidation = true
		return false
	}
	if f.onClose != nil {
		f.onClose()
	}
	return true
}

// ForceValidation reports whether a Done attempt was rejected.
func (f *FormValue) ForceValidation() bool {
	return f.forceValidation
}
