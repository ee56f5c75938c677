package main

import (
	"github.com/pixperk/bulksql/cmd"
	"github.com/pixperk/bulksql/internal/logx"
)

func main() {
	logx.InitLogger()
	cmd.Execute()
}
