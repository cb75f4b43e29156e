package catalog

import "github.com/claude/ironlog/internal/models"

func intPtr(i int) *int { return &i }

// BuiltinPrograms returns the canned starter programs shipped with the
// tracker. Each call assembles a fresh aggregate with new identities so
// callers can hand them straight to storage.
func BuiltinPrograms() ([]*models.Program, error) {
	var programs []*models.Program

	fiveByFive, err := NewProgram("Beginner 5x5", 12, 3, []WorkoutSpec{
		{
			Name: "Workout A",
			Exercises: []ExerciseSpec{
				{Name: "Barbell Squat", TargetSets: 5, TargetReps: 5, RestSeconds: intPtr(180)},
				{Name: "Bench Press", TargetSets: 5, TargetReps: 5, RestSeconds: intPtr(180)},
				{Name: "Barbell Row", TargetSets: 5, TargetReps: 5, RestSeconds: intPtr(180)},
			},
		},
		{
			Name: "Workout B",
			Exercises: []ExerciseSpec{
				{Name: "Barbell Squat", TargetSets: 5, TargetReps: 5, RestSeconds: intPtr(180)},
				{Name: "Overhead Press", TargetSets: 5, TargetReps: 5, RestSeconds: intPtr(180)},
				{Name: "Deadlift", TargetSets: 1, TargetReps: 5, RestSeconds: intPtr(300)},
			},
		},
	})
	if err != nil {
		return nil, err
	}
	programs = append(programs, fiveByFive)

	fullBody, err := NewProgram("Full Body 3-Day", 8, 3, []WorkoutSpec{
		{
			Name: "Full Body",
			Exercises: []ExerciseSpec{
				{Name: "Barbell Squat", TargetSets: 3, TargetReps: 8, RestSeconds: intPtr(150)},
				{Name: "Bench Press", TargetSets: 3, TargetReps: 8, RestSeconds: intPtr(150)},
				{Name: "Barbell Row", TargetSets: 3, TargetReps: 8, RestSeconds: intPtr(150)},
				// Arm superset: curls paired with pushdowns.
				{Name: "Biceps Curl", TargetSets: 3, TargetReps: 12, RestSeconds: intPtr(60), IsSupersetWith: intPtr(4)},
				{Name: "Triceps Pushdown", TargetSets: 3, TargetReps: 12, RestSeconds: intPtr(60), IsSupersetWith: intPtr(3)},
			},
		},
	})
	if err != nil {
		return nil, err
	}
	programs = append(programs, fullBody)

	return programs, nil
}
