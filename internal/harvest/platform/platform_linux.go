//go:build linux

package platform

import (
	"github.com/rileyhilliard/rtop/internal/harvest"
	"github.com/rileyhilliard/rtop/internal/harvest/procfs"
	"github.com/rileyhilliard/rtop/internal/logger"
)

func procfsSource(log logger.Logger) harvest.Source {
	return procfs.New(procfs.WithLogger(log))
}
