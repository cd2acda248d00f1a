package util

// Set is a set of strings.
type Set map[string]struct{}

// SetFromStrings creates a Set containing the strings from the given slice
func SetFromStrings(sl []string) Set {
	set := make(Set, len(sl))
	for _, item := range sl {
		set.Add(item)
	}
	return set
}

// Add adds an item to the set
func (s Set) Add(v string) {
	s[v] = struct{}{}
}

// Includes returns true/false of whether a value is in the set.
func (s Set) Includes(v string) bool {
	_, ok := s[v]
	return ok
}

