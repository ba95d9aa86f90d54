// Package catalog holds the validated, immutable course catalog. It is
// constructed once at process start and injected by reference into every
// component that consults it.
package catalog

import (
	"fmt"

	"github.com/scorecore/internal/domain"
)

// Catalog is a validated set of course definitions plus a chart index used
// to answer "which courses contain this chart" without scanning.
type Catalog struct {
	courses []domain.CourseDefinition
	byID    map[int]*domain.CourseDefinition
	byChart map[domain.ChartKey][]int
}

// New validates the given definitions and builds the catalog. Validation is
// fail-fast: the first violated rule aborts with an error naming the
// offending course, and no partially valid catalog is ever returned.
func New(defs []domain.CourseDefinition) (*Catalog, error) {
	c := &Catalog{
		courses: make([]domain.CourseDefinition, len(defs)),
		byID:    make(map[int]*domain.CourseDefinition, len(defs)),
		byChart: make(map[domain.ChartKey][]int),
	}
	copy(c.courses, defs)

	for i := range c.courses {
		course := &c.courses[i]
		if err := validate(course); err != nil {
			return nil, err
		}
		if _, dup := c.byID[course.ID]; dup {
			return nil, fmt.Errorf("course %d: duplicate id in course list", course.ID)
		}
		c.byID[course.ID] = course

		for _, slot := range course.Music {
			for _, alt := range slot {
				c.byChart[alt.Chart] = append(c.byChart[alt.Chart], course.ID)
			}
		}
	}
	return c, nil
}

func validate(course *domain.CourseDefinition) error {
	if course.ID < 1 {
		return fmt.Errorf("course %d: id must be positive", course.ID)
	}
	if course.ClearKind == domain.ClearHazard && course.HazardTier == 0 {
		return fmt.Errorf("course %d: hazard clear requires a hazard tier", course.ID)
	}
	if course.Kind == domain.CourseTimeBased && course.EndTime.IsZero() {
		return fmt.Errorf("course %d: time-based course requires an end time", course.ID)
	}
	if course.ClearKind == domain.ClearSingleScore || course.ClearKind == domain.ClearCombinedScore {
		if course.RequiredScore == 0 {
			return fmt.Errorf("course %d: score clear requires a required score", course.ID)
		}
	}
	if course.ClearKind == domain.ClearSingleScore && course.RequiredScore > domain.MaxChartScore {
		return fmt.Errorf("course %d: single-chart required score above %d", course.ID, domain.MaxChartScore)
	}
	if course.ClearKind == domain.ClearCombinedScore && course.RequiredScore <= domain.MaxChartScore {
		return fmt.Errorf("course %d: combined required score must exceed %d", course.ID, domain.MaxChartScore)
	}
	if len(course.Music) == 0 {
		return fmt.Errorf("course %d: empty music list", course.ID)
	}
	for slotNo, slot := range course.Music {
		if len(slot) == 0 {
			return fmt.Errorf("course %d: slot %d has no chart alternatives", course.ID, slotNo+1)
		}
	}
	return nil
}

// Course returns the definition for an id.
func (c *Catalog) Course(id int) (*domain.CourseDefinition, error) {
	course, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("course %d: %w", id, domain.ErrUnknownCourse)
	}
	return course, nil
}

// Courses returns all definitions in catalog order.
func (c *Catalog) Courses() []domain.CourseDefinition {
	out := make([]domain.CourseDefinition, len(c.courses))
	copy(out, c.courses)
	return out
}

// CoursesContaining returns the ids of every course with the given chart in
// any of its slots.
func (c *Catalog) CoursesContaining(chart domain.ChartKey) []int {
	return c.byChart[chart]
}

// Len returns the number of courses.
func (c *Catalog) Len() int {
	return len(c.courses)
}
