package config

// Department is a department configured for the organization
type Department struct {
	ID   string
	Name string
}

// Level is a severity level usable for the CIA triad and qualitative scoring fields
type Level struct {
	ID    string
	Name  string
	Score int
}

// RiskConfig holds the organization specific risk register configuration
type RiskConfig struct {
	Departments []Department
	Levels      []Level
}

// HasLevel reports whether id is a configured level. With no levels configured every value is accepted.
func (c *RiskConfig) HasLevel(id string) bool {
	if c == nil || len(c.Levels) == 0 {
		return true
	}
	for _, level := range c.Levels {
		if level.ID == id {
			return true
		}
	}
	return false
}
