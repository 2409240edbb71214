package query

import (
	"regexp"
	"strings"

	"github.com/yndnr/lingvo-go/internal/core/domain"
)

// Normalizer cleans a filter value. Returning an error rejects the value.
type Normalizer func(value string) (string, error)

// Filter declares one filterable parameter of a view.
type Filter struct {
	Key       string
	Label     string
	Normalize Normalizer
}

// View is the static description of one list endpoint.
type View struct {
	Name        string
	Filters     []Filter
	SortFields  []string
	DefaultSort Sort
	// Capability is what the session must hold to open the view.
	Capability domain.Capability
}

// Filter returns the filter declaration for a key.
func (v View) Filter(key string) (Filter, bool) {
	for _, f := range v.Filters {
		if f.Key == key {
			return f, true
		}
	}
	return Filter{}, false
}

// Sortable reports whether a field may be used for ordering.
func (v View) Sortable(field string) bool {
	for _, f := range v.SortFields {
		if f == field {
			return true
		}
	}
	return false
}

// FilterKeys returns the filter keys in declaration order.
func (v View) FilterKeys() []string {
	keys := make([]string, len(v.Filters))
	for i, f := range v.Filters {
		keys[i] = f.Key
	}
	return keys
}

// Trim strips surrounding whitespace.
func Trim(value string) (string, error) {
	return strings.TrimSpace(value), nil
}

// LanguageCode trims and upper-cases a language filter.
func LanguageCode(value string) (string, error) {
	return strings.ToUpper(strings.TrimSpace(value)), nil
}

var (
	digitsPattern = regexp.MustCompile(`^[0-9]+$`)
	datePattern   = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`)
)

// UserID accepts a numeric user id.
func UserID(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value != "" && !digitsPattern.MatchString(value) {
		return "", domain.ErrInvalidFilterValue.WithMessage("user must be a numeric id")
	}
	return value, nil
}

// Date accepts YYYY-MM-DD.
func Date(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value != "" && !datePattern.MatchString(value) {
		return "", domain.ErrInvalidFilterValue.WithMessage("date must be formatted as YYYY-MM-DD")
	}
	return value, nil
}

// MyTranslations lists the caller's own translations.
var MyTranslations = View{
	Name: "my_translations",
	Filters: []Filter{
		{Key: "source_lang", Label: "Source language", Normalize: LanguageCode},
		{Key: "target_lang", Label: "Target language", Normalize: LanguageCode},
	},
	SortFields:  []string{"id", "source_lang", "target_lang", "created_at", "payment__amount"},
	DefaultSort: Sort{Field: "created_at", Direction: Descending},
}

// Stats lists every translation together with the daily aggregate. Admin only.
var Stats = View{
	Name: "stats",
	Filters: []Filter{
		{Key: "user", Label: "User ID", Normalize: UserID},
		{Key: "date_from", Label: "From date", Normalize: Date},
		{Key: "date_to", Label: "To date", Normalize: Date},
	},
	SortFields:  []string{"id", "user__username", "source_lang", "target_lang", "created_at"},
	DefaultSort: Sort{Field: "created_at", Direction: Descending},
	Capability:  domain.CapabilityAdminOnly,
}
