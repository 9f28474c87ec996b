package location

// Home is a managed household.
type Home struct {
	ID   int64
	Name string
}

// Location is a room or zone within a home.
type Location struct {
	ID   int64
	Name string
	Home *Home
}

// HomeID returns the ID of the location's home, or 0 when unset.
func (l *Location) HomeID() int64 {
	if l == nil || l.Home == nil {
		return 0
	}
	return l.Home.ID
}
