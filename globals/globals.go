package globals

// Context keys
type ContextKey string

const RoleKey ContextKey = "role"
const UserIDKey ContextKey = "userId"
const TokenIDKey ContextKey = "tokenId"

// Roles carried in the token claims.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// EmptyValue is shown in admin listings for blank fields.
const EmptyValue = "-empty-"
