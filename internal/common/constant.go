package common

// UserIDMetadataKey is the gRPC metadata key carrying the acting user's ID,
// set by the gateway in front of the access service.
const UserIDMetadataKey = "user_id"
