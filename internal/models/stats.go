package models

// DirectoryStats is the admin dashboard snapshot, computed from the live
// business table rather than persisted.
type DirectoryStats struct {
	TotalBusinesses  int64 `json:"totalBusinesses"`
	ActiveBusinesses int64 `json:"activeBusinesses"`
	PendingReview    int64 `json:"pendingReview"`
	Suspended        int64 `json:"suspended"`
	TotalViews       int64 `json:"totalViews"`
}
