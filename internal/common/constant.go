package common

// AccessTokenHeaderName is the HTTP header used to carry the access token on
// outbound requests.
const AccessTokenHeaderName = "Authorization"

// MaxVoiceDurationSeconds is the longest voice capture the parse endpoint
// accepts.
const MaxVoiceDurationSeconds = 15

// DefaultCategoryName is the reserved fallback category. Category deletion
// re-points dependent expenses here rather than leaving dangling references.
const DefaultCategoryName = "Other"

// TombstoneRetention is how many days a deleted expense stays restorable
// before it is purged and a best-effort remote delete is issued.
const TombstoneRetentionDays = 30
