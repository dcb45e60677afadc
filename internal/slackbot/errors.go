package slackbot

import (
	"errors"
)

// -- Sentinels --

var (
	ErrHistoryUnavailable = errors.New("thread history fetch failed")
	ErrInvalidPayload     = errors.New("approval payload is not decodable")
)
