// Package converters links every built-in converter module into the binary.
// Importing it for side effects makes transform.NewRegistry see them all.
package converters

import (
	_ "github.com/FocuswithJustin/DevToolkit/core/transform/bits"
	_ "github.com/FocuswithJustin/DevToolkit/core/transform/encoding"
	_ "github.com/FocuswithJustin/DevToolkit/core/transform/structured"
	_ "github.com/FocuswithJustin/DevToolkit/core/transform/textcase"
)
