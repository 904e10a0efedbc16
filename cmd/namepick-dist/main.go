package main

import (
	"github.com/MakeNowJust/heredoc"

	basecmd "go.ntppool.org/namepick/cmd"
	"go.ntppool.org/namepick/distribution"
)

func main() {
	basecmd.Run(&distribution.Cmd{}, "namepick-dist", heredoc.Doc(`
		Run the name selector repeatedly and report how the picks are
		distributed.

		Example: namepick-dist names.txt 100
	`))
}
