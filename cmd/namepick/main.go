package main

import (
	"github.com/MakeNowJust/heredoc"

	basecmd "go.ntppool.org/namepick/cmd"
	"go.ntppool.org/namepick/selector"
)

func main() {
	basecmd.Run(&selector.Cmd{}, "namepick", heredoc.Doc(`
		Print one name from a file, picked with a number from random.org.

		The file has one name per line. The draw (1-100) is mapped to
		line draw mod (lines - 1), so the last line is never picked.
	`))
}
