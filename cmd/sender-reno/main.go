package main

import (
	"os"

	"github.com/YaoZengzeng/yusend/cli"
	"github.com/YaoZengzeng/yusend/transport/sender"
)

func main() {
	cmd := cli.New("reno", "file.mp3", func() sender.Controller {
		return sender.NewReno()
	})
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
