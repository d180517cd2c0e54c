package importer

import (
	"strings"

	"github.com/cleared-dev/bankfeed/internal/model"
)

// Profile is a saved column mapping and date format for a known bank export.
type Profile struct {
	Name       string
	Mapping    model.ColumnMapping
	DateFormat DateFormat
}

// Registry holds named profiles.
type Registry struct {
	profiles map[string]Profile
}

// NewRegistry creates an empty profile registry.
func NewRegistry() *Registry {
	return &Registry{profiles: make(map[string]Profile)}
}

// Register adds a profile. Panics on duplicate name.
func (r *Registry) Register(p Profile) {
	key := strings.ToLower(p.Name)
	if _, ok := r.profiles[key]; ok {
		panic("duplicate profile: " + key)
	}
	r.profiles[key] = p
}

// Get returns the named profile.
func (r *Registry) Get(name string) (Profile, bool) {
	p, ok := r.profiles[strings.ToLower(name)]
	return p, ok
}

// DefaultRegistry returns a registry with the built-in bank profiles.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Profile{
		Name: "chase",
		Mapping: model.ColumnMapping{
			Date:        "Posting Date",
			Description: "Description",
			Amount:      "Amount",
			Balance:     "Balance",
			Reference:   "Check or Slip #",
		},
		DateFormat: MonthDayYear,
	})
	r.Register(Profile{
		Name: "anz",
		Mapping: model.ColumnMapping{
			Date:        "Date",
			Description: "Details",
			Amount:      "Amount",
			Balance:     "Balance",
			Reference:   "Reference",
		},
		DateFormat: DayMonthYear,
	})
	return r
}
