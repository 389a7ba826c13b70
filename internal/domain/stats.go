package domain

// EmployeeStats aggregates one employee's schedule for the analytics view.
type EmployeeStats struct {
	UserID          string
	FullName        string
	TotalTasks      int
	Pending         int
	InProgress      int
	Completed       int
	Blocked         int
	OpenEscalations int
	CompletionRate  float64
}
