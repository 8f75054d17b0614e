package tasks

import "github.com/tgienger/taskhold/internal/models"

func date(s string) models.Date {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// seedTasks is the fixed bootstrap set used the first time an owner's
// collection is loaded. Only entries matching the owner are seeded.
var seedTasks = []models.Task{
	{
		ID:          "1",
		Title:       "Complete React Native Tutorial",
		Description: "Finish watching the entire React Native course and take notes",
		Completed:   false,
		Priority:    models.PriorityHigh,
		DueDate:     date("2024-12-10"),
		CreatedAt:   date("2024-12-07"),
		UserID:      "1",
	},
	{
		ID:          "2",
		Title:       "Build Weekend Assignment",
		Description: "Create a task manager app demonstrating all core concepts",
		Completed:   false,
		Priority:    models.PriorityHigh,
		DueDate:     date("2024-12-09"),
		CreatedAt:   date("2024-12-07"),
		UserID:      "1",
	},
	{
		ID:          "3",
		Title:       "Setup GitHub Repository",
		Description: "Create repo with proper README and documentation",
		Completed:   true,
		Priority:    models.PriorityMedium,
		DueDate:     date("2024-12-08"),
		CreatedAt:   date("2024-12-07"),
		UserID:      "1",
	},
}
