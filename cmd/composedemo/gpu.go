//go:build !nogpu

package main

import (
	"github.com/gogpu/compose"
	_ "github.com/gogpu/compose/gpu"
)

func init() {
	useGPU = func() bool { return compose.ActiveBackend() != nil }
}
