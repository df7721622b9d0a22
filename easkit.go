// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package main

import (
	"blockwatch.cc/easkit/cmd"
)

func main() {
	cmd.Run()
}
