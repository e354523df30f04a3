//go:build tools

package tools

// Tool dependencies tracked via blank imports so `go mod tidy` keeps them.
// mockery generates pkg/transport/mocks; run `mockery` from the repo root.
import (
	_ "github.com/vektra/mockery/v2"
)
