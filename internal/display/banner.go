package display

import (
	"fmt"
	"io"

	"github.com/backmassage/subenlarge/internal/term"
)

// PrintBanner prints the ASCII art banner with the version; uses Magenta if
// colors are enabled.
func PrintBanner(w io.Writer, version string) {
	fmt.Fprint(w, term.Magenta)
	fmt.Fprint(w, `           _                _
 ___ _   _| |__   ___ _ __ | | __ _ _ __ __ _  ___
/ __| | | | '_ \ / _ \ '_ \| |/ _`+"`"+` | '__/ _`+"`"+` |/ _ \
\__ \ |_| | |_) |  __/ | | | | (_| | | | (_| |  __/
|___/\__,_|_.__/ \___|_| |_|_|\__,_|_|  \__, |\___|
                                        |___/
`)
	fmt.Fprint(w, term.NC)
	fmt.Fprintln(w, term.Paint(term.Dim, "v"+version+"  bigger subtitles for MKV files"))
	fmt.Fprintln(w)
}
