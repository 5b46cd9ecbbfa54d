package domain

// License carries the usage terms a dataset ships with. Reprojection
// responses repeat it so the terms travel with the derived coordinates.
type License struct {
	Name        string // e.g. "CC BY 4.0"
	URL         string // Link to the license text
	Attribution string // Attribution text to display
}

// IsEmpty returns true if no license information is set.
func (l *License) IsEmpty() bool {
	return l.Name == "" && l.URL == "" && l.Attribution == ""
}

// String returns the attribution text, falling back to the license name.
func (l *License) String() string {
	if l.Attribution != "" {
		return l.Attribution
	}
	return l.Name
}
