// Package riskpriority implements the AIAG-VDA style action priority
// decision table. The table, not the raw RPN, is the single source of
// truth for priority: RPN treats 9*2*1 and 2*3*3 as equal risk, the
// severity-banded table does not.
package riskpriority

import "github.com/tracewright/apqp-engine/pkg/models"

// Clamp forces a rating factor into the valid 1..10 range.
func Clamp(v int) int {
	if v < 1 {
		return 1
	}
	if v > 10 {
		return 10
	}
	return v
}

// RPN returns the risk priority number S*O*D over clamped factors.
func RPN(s, o, d int) int {
	return Clamp(s) * Clamp(o) * Clamp(d)
}

// ActionPriority maps a (Severity, Occurrence, Detection) triple to H/M/L.
// Inputs are clamped to 1..10 before lookup. Banded by severity first.
func ActionPriority(s, o, d int) models.ActionPriority {
	s, o, d = Clamp(s), Clamp(o), Clamp(d)

	switch {
	case s >= 9:
		return prioritySafety(o, d)
	case s >= 7:
		return priorityHigh(o, d)
	case s >= 4:
		return priorityModerate(o, d)
	default:
		return priorityLow(o, d)
	}
}

// Severity 9-10: safety or regulatory effect.
func prioritySafety(o, d int) models.ActionPriority {
	if o >= 2 {
		return models.PriorityHigh
	}
	if d >= 5 {
		return models.PriorityHigh
	}
	return models.PriorityMedium
}

// Severity 7-8: loss of primary function.
func priorityHigh(o, d int) models.ActionPriority {
	switch {
	case o >= 7:
		return models.PriorityHigh
	case o >= 4:
		if d >= 3 {
			return models.PriorityHigh
		}
		return models.PriorityMedium
	case o >= 2:
		switch {
		case d >= 7:
			return models.PriorityHigh
		case d >= 3:
			return models.PriorityMedium
		default:
			return models.PriorityLow
		}
	default:
		switch {
		case d >= 9:
			return models.PriorityHigh
		case d >= 5:
			return models.PriorityMedium
		default:
			return models.PriorityLow
		}
	}
}

// Severity 4-6: degradation of function.
func priorityModerate(o, d int) models.ActionPriority {
	switch {
	case o >= 7:
		if d >= 3 {
			return models.PriorityHigh
		}
		return models.PriorityMedium
	case o >= 4:
		switch {
		case d >= 7:
			return models.PriorityHigh
		case d >= 3:
			return models.PriorityMedium
		default:
			return models.PriorityLow
		}
	case o >= 2:
		if d >= 5 {
			return models.PriorityMedium
		}
		return models.PriorityLow
	default:
		if d >= 9 {
			return models.PriorityMedium
		}
		return models.PriorityLow
	}
}

// Severity 1-3: annoyance class effects.
func priorityLow(o, d int) models.ActionPriority {
	switch {
	case o >= 7:
		switch {
		case d >= 9:
			return models.PriorityHigh
		case d >= 3:
			return models.PriorityMedium
		default:
			return models.PriorityLow
		}
	case o >= 4:
		if d >= 7 {
			return models.PriorityMedium
		}
		return models.PriorityLow
	case o >= 2:
		if d >= 9 {
			return models.PriorityMedium
		}
		return models.PriorityLow
	default:
		return models.PriorityLow
	}
}
