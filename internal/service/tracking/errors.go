package tracking

import "errors"

var (
	ErrOrderNotInTransit   = errors.New("order is not on the way")
	ErrRoomClosed          = errors.New("tracking room is closed")
	ErrCarrierOnly         = errors.New("only the carrier can publish location")
	ErrEmptyMessage        = errors.New("empty chat message")
	ErrMessageTooLong      = errors.New("chat message is too long")
	ErrLocationUnavailable = errors.New("carrier location is unavailable")
)
