package mcp

import (
	"errors"
)

// -- Sentinels --

var (
	ErrUnknownTool       = errors.New("tool is not provided by any configured server")
	ErrServerStartFailed = errors.New("mcp server failed to start")
)
