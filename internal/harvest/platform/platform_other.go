//go:build !linux

package platform

import (
	"github.com/rileyhilliard/rtop/internal/harvest"
	"github.com/rileyhilliard/rtop/internal/logger"
)

func procfsSource(logger.Logger) harvest.Source {
	return nil
}
