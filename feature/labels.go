package feature

// Labels tracks a slice of features and their index locations that match up
// with the column ordering of a feature row.
type Labels struct {
	idx    map[string]int
	labels []Feature
}

func NewLabels(labels []Feature) *Labels {
	idx := make(map[string]int)
	for i := 0; i < len(labels); i++ {
		idx[labels[i].String()] = i
	}
	fl := &Labels{
		labels: labels,
		idx:    idx,
	}
	return fl
}

func (f *Labels) Len() int {
	if f == nil {
		return 0
	}
	return len(f.labels)
}

// Names returns the column names in order
func (f *Labels) Names() []string {
	if f == nil {
		return nil
	}
	names := make([]string, 0, len(f.labels))
	for _, l := range f.labels {
		names = append(names, l.String())
	}
	return names
}

func (f *Labels) Index(name string) (int, bool) {
	if f == nil {
		return -1, false
	}
	if idx, exists := f.idx[name]; exists {
		return idx, exists
	}
	return -1, false
}
