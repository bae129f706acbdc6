package stage

// Health summarizes whether one pipeline dependency is ready to run.
type Health struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// Healthy constructs a ready Health record.
func Healthy(name string) Health {
	return Health{Name: name, Ready: true}
}

// Unhealthy constructs a Health record that explains what is missing.
func Unhealthy(name, detail string) Health {
	return Health{Name: name, Ready: false, Detail: detail}
}

// AllReady reports whether every check passed.
func AllReady(checks []Health) bool {
	for _, check := range checks {
		if !check.Ready {
			return false
		}
	}
	return true
}
