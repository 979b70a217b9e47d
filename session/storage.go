package session

// Storage keys. The session occupies exactly two keys: the serialized
// user profile and the raw access token string. Absence of either key is
// a valid logged-out state.
const (
	StorageKeyUser  = "user"
	StorageKeyToken = "accessToken"
)

// Storage is persisted key-value storage for the session. Implementations
// must tolerate missing keys (ok=false, no error) and deleting keys that
// are already absent.
type Storage interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
}
