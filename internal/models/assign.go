package models

// Assign writes value into the write-once attribute field.
// It succeeds when the field is unset or already holds an equal value; a
// different held value yields a *ConflictError naming key. A nil value is a
// no-op: a fragment that does not know an attribute never erases it.
func Assign[T comparable](key string, field **T, value *T) error {
	if value == nil {
		return nil
	}
	if *field != nil {
		if **field != *value {
			return &ConflictError{Key: key, Previous: **field, Rejected: *value}
		}
		return nil
	}
	v := *value
	*field = &v
	return nil
}

// assignString is Assign for plain string attributes where "" means unset.
func assignString(key string, field *string, value string) error {
	if value == "" {
		return nil
	}
	if *field != "" && *field != value {
		return &ConflictError{Key: key, Previous: *field, Rejected: value}
	}
	*field = value
	return nil
}
