package ws

// Server frame types.
const (
	FrameWelcome = "welcome"
	FrameEvent   = "event"
	FrameError   = "error"
)

// Client command types.
const (
	CommandMove = "move"
	CommandSay  = "say"
	CommandYell = "yell"
)
