package alarm

// Actor identifies who asked for a manual trigger or stop.
type Actor struct {
	// Hostname is the machine the request came from.
	Hostname string
	// Username is the system user behind the request.
	Username string
}

// Clone returns a copy of the actor.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// String renders the actor as user@host, or "local" when unknown.
func (a *Actor) String() string {
	if a == nil || (a.Hostname == "" && a.Username == "") {
		return "local"
	}

	return a.Username + "@" + a.Hostname
}
