package messages

// AppEvent is a command decoded from a hotkey chord and handed to the event loop.
type AppEvent int

const (
	InitializeGadget AppEvent = iota + 1
	GetSelected
	GetHelp
	Quit
)

func (e AppEvent) String() string {
	switch e {
	case InitializeGadget:
		return "InitializeGadget"
	case GetSelected:
		return "GetSelected"
	case GetHelp:
		return "GetHelp"
	case Quit:
		return "Quit"
	default:
		return "Unknown"
	}
}
