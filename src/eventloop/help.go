package eventloop

import (
	"fmt"
	"strings"

	"interactive-scraper/src/hotkey"
)

// HelpText describes the workflow and the chords for the given keymap.
func HelpText(km hotkey.Keymap) string {
	initChord := km.Chord(hotkey.KeyS)
	getChord := km.Chord(hotkey.KeyA)
	helpChord := km.Chord(hotkey.KeyH)
	quitChord := km.Chord(hotkey.KeyEsc)

	width := len(quitChord)
	var b strings.Builder
	b.WriteString("INSTRUCTIONS:\n")
	fmt.Fprintf(&b, "1. Open a page in the browser and press %s to load the selector gadget.\n", initChord)
	b.WriteString("2. Click elements in the page until the gadget shows the selector you want.\n")
	fmt.Fprintf(&b, "3. Press %s to read the selector and count the elements it matches.\n", getChord)
	b.WriteString("\nHOTKEYS:\n")
	fmt.Fprintf(&b, "- %-*s : load the selector gadget\n", width, initChord)
	fmt.Fprintf(&b, "- %-*s : read the selected elements\n", width, getChord)
	fmt.Fprintf(&b, "- %-*s : show this help\n", width, helpChord)
	fmt.Fprintf(&b, "- %-*s : quit\n", width, quitChord)
	b.WriteString("\nThe modifier must be pressed again for every command.\n")
	return b.String()
}
