// Package all registers all command providers.
package all

import (
	_ "github.com/emberone/bridge.go/pkg/cli/cmds/periph"
)
