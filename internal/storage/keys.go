package storage

const keyPrefix = "taskrabbit_"

const (
	TasksKey           = keyPrefix + "tasks"
	UserKey            = keyPrefix + "users"
	AuthTokenKey       = keyPrefix + "auth_token"
	UserPreferencesKey = keyPrefix + "user_preferences"
	CredentialsKey     = keyPrefix + "credentials"

	// Reserved for synchronisation with a remote backend, nothing reads
	// or writes them yet.
	SyncQueueKey = keyPrefix + "sync_queue"
	LastSyncKey  = keyPrefix + "last_sync"
)
