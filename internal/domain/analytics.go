package domain

// UnassignedDepartment labels suggestions submitted without a department.
const UnassignedDepartment = "Unassigned"

// StatusCount is one row of the per-status aggregation.
type StatusCount struct {
	Status SuggestionStatus `json:"status"`
	Count  int64            `json:"count"`
}

// DepartmentCount is one row of the per-department aggregation.
type DepartmentCount struct {
	Department string `json:"department"`
	Count      int64  `json:"count"`
}

// DailyCount is one day of the submission trend. Date is YYYY-MM-DD.
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// SuggestionAnalytics bundles the three admin aggregations.
type SuggestionAnalytics struct {
	StatusCounts     []StatusCount     `json:"statusCounts"`
	DepartmentCounts []DepartmentCount `json:"departmentCounts"`
	SubmissionsTrend []DailyCount      `json:"submissionsTrend"`
}
