package output

import (
	"fmt"

	"github.com/fatih/color"
)

const art = `                 __  __                  _________
    ____  ____ _/ /_/ /_  _________  (_) __/ __/
   / __ \/ __ '/ __/ __ \/ ___/ __ \/ / /_/ /_
  / /_/ / /_/ / /_/ / / (__  ) / / / / __/ __/
 / .___/\__,_/\__/_/ /_/____/_/ /_/_/_/ /_/
/_/`

// Banner returns the startup banner. Colors follow color.NoColor.
func Banner(version string) string {
	return fmt.Sprintf("%s\n\nendpoint discovery for live pages\nversion %s\n\n", color.CyanString(art), version)
}
