//go:build tools

// Package tools pins the code generators invoked through go:generate so
// go.mod and go.sum track them.
package safe_space

import (
	_ "go.uber.org/mock/mockgen"
)
