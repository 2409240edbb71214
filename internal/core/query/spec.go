package query

import (
	"net/url"
	"strings"

	"github.com/yndnr/lingvo-go/internal/core/domain"
)

// Direction is a sort direction.
type Direction int

const (
	Descending Direction = iota
	Ascending
)

// String returns "asc" or "desc".
func (d Direction) String() string {
	if d == Ascending {
		return "asc"
	}
	return "desc"
}

// Toggle flips the direction.
func (d Direction) Toggle() Direction {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

// Sort is the active ordering.
type Sort struct {
	Field     string
	Direction Direction
}

// Ordering renders the ordering parameter: "field" ascending, "-field" descending.
func (s Sort) Ordering() string {
	if s.Direction == Ascending {
		return s.Field
	}
	return "-" + s.Field
}

// ParseOrdering is the inverse of Ordering.
func ParseOrdering(ordering string) Sort {
	if strings.HasPrefix(ordering, "-") {
		return Sort{Field: ordering[1:], Direction: Descending}
	}
	return Sort{Field: ordering, Direction: Ascending}
}

// Filters maps filter keys to values. Blank values are inactive.
type Filters map[string]string

// Clone returns an independent copy.
func (f Filters) Clone() Filters {
	out := make(Filters, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Active returns only the entries whose value is not blank.
func (f Filters) Active() Filters {
	out := make(Filters)
	for k, v := range f {
		if strings.TrimSpace(v) != "" {
			out[k] = v
		}
	}
	return out
}

// Spec holds the criteria of one list view: staged filters (user edits),
// applied filters (last committed set) and the sort.
type Spec struct {
	view    View
	staged  Filters
	applied Filters
	sort    Sort
}

// NewSpec returns a spec with no filters and the view's default sort.
func NewSpec(view View) *Spec {
	return &Spec{
		view:    view,
		staged:  make(Filters),
		applied: make(Filters),
		sort:    view.DefaultSort,
	}
}

// View returns the view the spec belongs to.
func (s *Spec) View() View {
	return s.view
}

// SetFilter stages a filter value after normalizing it.
func (s *Spec) SetFilter(key, value string) error {
	f, ok := s.view.Filter(key)
	if !ok {
		return domain.ErrUnknownFilter.WithMessage("unknown filter: " + key)
	}
	if f.Normalize != nil {
		normalized, err := f.Normalize(value)
		if err != nil {
			return err
		}
		value = normalized
	}
	s.staged[key] = value
	return nil
}

// Apply commits the staged filters.
func (s *Spec) Apply() {
	s.applied = s.staged.Clone()
}

// Staged returns a copy of the staged filters.
func (s *Spec) Staged() Filters {
	return s.staged.Clone()
}

// Applied returns a copy of the applied filters.
func (s *Spec) Applied() Filters {
	return s.applied.Clone()
}

// Sort returns the active sort.
func (s *Spec) Sort() Sort {
	return s.sort
}

// SetSort toggles the direction when field is already active, otherwise it
// switches to field with a descending direction.
func (s *Spec) SetSort(field string) error {
	if !s.view.Sortable(field) {
		return domain.ErrUnknownSortField.WithMessage("cannot sort by " + field)
	}
	if field == s.sort.Field {
		s.sort.Direction = s.sort.Direction.Toggle()
		return nil
	}
	s.sort = Sort{Field: field, Direction: Descending}
	return nil
}

// Values builds the query string from the applied filters and the sort.
// Blank filters are never included.
func (s *Spec) Values() url.Values {
	v := url.Values{}
	v.Set("ordering", s.sort.Ordering())
	for _, key := range s.view.FilterKeys() {
		value := strings.TrimSpace(s.applied[key])
		if value == "" {
			continue
		}
		v.Set(key, value)
	}
	return v
}
