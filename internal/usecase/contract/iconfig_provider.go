package usecasecontract

// IConfigProvider exposes the settings the like use cases depend on.
type IConfigProvider interface {
	GetRefreshCountOnRead() bool
	GetConflictRetries() int
}
