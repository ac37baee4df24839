package handler

const (
	errInternalServer = "Internal server error"
	errAlreadyTapped  = "already recorded"
	errTokenInvalid   = "Token is invalid or expired"
)
