package execution

import "time"

// ProgressPercentage is the consumed-slot count over the program's total
// scheduled workouts, in [0,1]. Skipped workouts still consume a schedule
// slot, so they advance progress; performed-only adherence comes from the
// streak and weekly views.
func (m *Machine) ProgressPercentage() float64 {
	total := m.program.WeeksTotal * m.program.DaysPerWeek
	if total == 0 {
		return 0
	}
	return float64(len(m.exec.History)) / float64(total)
}

// CurrentStreak counts non-skipped records reachable from now without a gap
// exceeding 7 days, scanning newest-first. A record older than 7 days from
// its successor (or from now) ends the streak.
func (m *Machine) CurrentStreak() int {
	const gap = 7 * 24 * time.Hour

	streak := 0
	anchor := m.now().UTC()
	for i := len(m.exec.History) - 1; i >= 0; i-- {
		rec := m.exec.History[i]
		if rec.IsSkipped {
			continue
		}
		if anchor.Sub(rec.CompletedAt) > gap {
			break
		}
		streak++
		anchor = rec.CompletedAt
	}
	return streak
}

// CompletedWorkoutsThisWeek counts non-skipped records logged against the
// current program week whose timestamp falls inside the current calendar
// week (ISO week, Monday start).
func (m *Machine) CompletedWorkoutsThisWeek() int {
	nowYear, nowWeek := m.now().UTC().ISOWeek()

	count := 0
	for _, rec := range m.exec.History {
		if rec.IsSkipped || rec.WeekNumber != m.exec.CurrentWeek {
			continue
		}
		y, w := rec.CompletedAt.ISOWeek()
		if y == nowYear && w == nowWeek {
			count++
		}
	}
	return count
}

// ElapsedWeeks is the number of whole weeks since the execution started.
func (m *Machine) ElapsedWeeks() int {
	end := m.now().UTC()
	if m.exec.EndedAt != nil {
		end = *m.exec.EndedAt
	}
	return int(end.Sub(m.exec.StartedAt) / (7 * 24 * time.Hour))
}
