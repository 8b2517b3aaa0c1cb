package filter

// StringFilter adds case-insensitive pattern matching to Filter[string]
type StringFilter struct {
	Filter[string]
	Contains       *string `json:"contains,omitempty" msgpack:"ct,omitempty"`
	DoesNotContain *string `json:"doesNotContain,omitempty" msgpack:"nct,omitempty"`
	StartsWith     *string `json:"startsWith,omitempty" msgpack:"sw,omitempty"`
	EndsWith       *string `json:"endsWith,omitempty" msgpack:"ew,omitempty"`
}

// Containing returns a filter matching values that contain s, ignoring case
func Containing(s string) *StringFilter {
	return new(StringFilter).SetContains(s)
}

func (f *StringFilter) SetContains(s string) *StringFilter {
	f.Contains = &s
	return f
}

func (f *StringFilter) SetDoesNotContain(s string) *StringFilter {
	f.DoesNotContain = &s
	return f
}

func (f *StringFilter) SetStartsWith(s string) *StringFilter {
	f.StartsWith = &s
	return f
}

func (f *StringFilter) SetEndsWith(s string) *StringFilter {
	f.EndsWith = &s
	return f
}

// Conditions implements Constraint
func (f *StringFilter) Conditions() []Condition {
	if f == nil {
		return nil
	}

	conds := f.Filter.Conditions()
	if f.Contains != nil {
		conds = append(conds, Condition{Operator: Contains, Value: *f.Contains})
	}
	if f.DoesNotContain != nil {
		conds = append(conds, Condition{Operator: DoesNotContain, Value: *f.DoesNotContain})
	}
	if f.StartsWith != nil {
		conds = append(conds, Condition{Operator: StartsWith, Value: *f.StartsWith})
	}
	if f.EndsWith != nil {
		conds = append(conds, Condition{Operator: EndsWith, Value: *f.EndsWith})
	}
	return conds
}

func (f *StringFilter) IsEmpty() bool {
	return len(f.Conditions()) == 0
}
