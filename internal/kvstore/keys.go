package kvstore

// Storage keys used by the client core. Centralized so Clear-style
// operations can remove everything an install persists.
const (
	KeyAccessToken  = "auth.access_token"
	KeyRefreshToken = "auth.refresh_token"
	KeyUser         = "auth.user"
	KeyCart         = "cart.snapshot"
)
