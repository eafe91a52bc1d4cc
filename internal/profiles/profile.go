package profiles

import "time"

// Profile is the user-level configuration driving plan generation. The
// service is single-user, so exactly one profile row exists.
type Profile struct {
	Name              string    `json:"name"`
	Goal              string    `json:"goal"`
	Experience        string    `json:"experience"`
	DaysPerWeek       int       `json:"daysPerWeek"`
	Equipment         string    `json:"equipment"`
	HeightCm          int       `json:"heightCm"`
	WeightKg          float64   `json:"weightKg"`
	UnitPreference    string    `json:"unitPreference"`
	CardioPreference  string    `json:"cardioPreference"`
	PreferredRestDays []string  `json:"preferredRestDays"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Normalize keeps slice fields non-nil for callers and JSON output.
func (p *Profile) Normalize() {
	if p.PreferredRestDays == nil {
		p.PreferredRestDays = []string{}
	}
}
