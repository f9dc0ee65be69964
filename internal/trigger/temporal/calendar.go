package temporal

import (
	"fmt"
	"strconv"
	"strings"

	"go.temporal.io/sdk/client"
)

type fieldBounds struct {
	min, max int
	// offset is subtracted from every value. AWS numbers weekdays 1-7
	// from Sunday, Temporal 0-6.
	offset int
}

var (
	minuteBounds = fieldBounds{min: 0, max: 59}
	hourBounds   = fieldBounds{min: 0, max: 23}
	domBounds    = fieldBounds{min: 1, max: 31}
	monthBounds  = fieldBounds{min: 1, max: 12}
	dowBounds    = fieldBounds{min: 1, max: 7, offset: 1}
	yearBounds   = fieldBounds{min: 1970, max: 2199}
)

// CalendarSpec converts a "cron(m h dom mon dow year)" expression into a
// calendar spec. Only the field forms accepted by job validation are
// supported: wildcards, single values, ranges and steps.
func CalendarSpec(expr string) (client.ScheduleCalendarSpec, error) {
	var spec client.ScheduleCalendarSpec

	inner, ok := strings.CutPrefix(expr, "cron(")
	if ok {
		inner, ok = strings.CutSuffix(inner, ")")
	}
	if !ok {
		return spec, fmt.Errorf("unsupported schedule expression %q", expr)
	}
	fields := strings.Split(inner, " ")
	if len(fields) != 6 {
		return spec, fmt.Errorf("expected 6 fields in %q, got %d", expr, len(fields))
	}

	targets := []struct {
		dst    *[]client.ScheduleRange
		bounds fieldBounds
		name   string
	}{
		{&spec.Minute, minuteBounds, "minute"},
		{&spec.Hour, hourBounds, "hour"},
		{&spec.DayOfMonth, domBounds, "day of month"},
		{&spec.Month, monthBounds, "month"},
		{&spec.DayOfWeek, dowBounds, "day of week"},
		{&spec.Year, yearBounds, "year"},
	}
	for i, t := range targets {
		r, err := parseField(fields[i], t.bounds)
		if err != nil {
			return spec, fmt.Errorf("%s field %q: %w", t.name, fields[i], err)
		}
		*t.dst = []client.ScheduleRange{r}
	}
	// An empty year list matches every year.
	if fields[5] == "*" || fields[5] == "?" {
		spec.Year = nil
	}
	spec.Comment = expr
	return spec, nil
}

func parseField(f string, b fieldBounds) (client.ScheduleRange, error) {
	r := client.ScheduleRange{Start: b.min, End: b.max}

	base, stepStr, stepped := strings.Cut(f, "/")
	if stepped {
		step, err := strconv.Atoi(stepStr)
		if err != nil || step <= 0 {
			return r, fmt.Errorf("invalid step")
		}
		r.Step = step
	}

	switch {
	case base == "*" || base == "?":
	case strings.Contains(base, "-"):
		lo, hi, _ := strings.Cut(base, "-")
		start, err := strconv.Atoi(lo)
		if err != nil {
			return r, fmt.Errorf("invalid range start")
		}
		end, err := strconv.Atoi(hi)
		if err != nil {
			return r, fmt.Errorf("invalid range end")
		}
		r.Start, r.End = start, end
	default:
		v, err := strconv.Atoi(base)
		if err != nil {
			return r, fmt.Errorf("invalid value")
		}
		r.Start, r.End = v, v
	}

	if r.Start < b.min || r.End > b.max || r.Start > r.End {
		return r, fmt.Errorf("out of range %d-%d", b.min, b.max)
	}
	r.Start -= b.offset
	r.End -= b.offset
	return r, nil
}
