package constants

const (
	// ContextKeyUserID is used both as the session key and the gin context key.
	ContextKeyUserID = "user_id"

	// ContextKeyTask holds the task loaded by middleware.LoadTask.
	ContextKeyTask = "task"

	SessionCookieName = "river_session"

	MinPasswordLength = 8

	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// RecentVisitLimit is the size of the dashboard activity feed.
	RecentVisitLimit = 15

	// WeedingTopN is the number of weed labels listed before the "Other" bucket.
	WeedingTopN = 3

	// MinPhotoDescriptionLength applies only when a photo file is attached.
	MinPhotoDescriptionLength = 10

	MaxAIGeneratedTasks = 20

	// DashboardCacheKey is the go-cache key for the global dashboard totals.
	DashboardCacheKey = "dashboard"
)
