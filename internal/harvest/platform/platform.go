// Package platform picks the harvest.Source backend for the running OS.
package platform

import (
	"fmt"
	"strings"

	rterrors "github.com/rileyhilliard/rtop/internal/errors"
	"github.com/rileyhilliard/rtop/internal/harvest"
	"github.com/rileyhilliard/rtop/internal/harvest/psutil"
	"github.com/rileyhilliard/rtop/internal/logger"
)

// Backend names accepted by ByName.
const (
	BackendAuto   = "auto"
	BackendProcfs = "procfs"
	BackendPsutil = "psutil"
)

// Backends lists the names ByName understands.
var Backends = []string{BackendAuto, BackendProcfs, BackendPsutil}

// ByName returns the backend called name. An empty name means auto.
func ByName(name string, log logger.Logger) (harvest.Source, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", BackendAuto:
		return Default(log), nil
	case BackendPsutil:
		return psutil.New(log), nil
	case BackendProcfs:
		src := procfsSource(log)
		if src == nil {
			return nil, rterrors.NewStartup(
				"The procfs backend is only available on Linux",
				"Use --backend psutil or --backend auto")
		}
		return src, nil
	}
	return nil, rterrors.New(rterrors.ErrConfig,
		fmt.Sprintf("Unknown backend %q", name),
		"Valid backends: "+strings.Join(Backends, ", "))
}

// Default returns the preferred backend for this OS.
func Default(log logger.Logger) harvest.Source {
	if src := procfsSource(log); src != nil {
		return src
	}
	return psutil.New(log)
}
