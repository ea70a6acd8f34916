package install

import (
	"github.com/sirupsen/logrus"
)

// KernelFlavor is one of the kernels jade knows how to install.
type KernelFlavor int

const (
	KernelLinux KernelFlavor = iota
	KernelLTS
	KernelZen
	KernelHardened
)

var kernelNames = map[KernelFlavor]string{
	KernelLinux:    "linux",
	KernelLTS:      "linux-lts",
	KernelZen:      "linux-zen",
	KernelHardened: "linux-hardened",
}

// ParseKernelFlavor returns the flavor with the given package name. An empty
// name selects the default kernel. ok is false for unknown names.
func ParseKernelFlavor(name string) (flavor KernelFlavor, ok bool) {
	if name == "" {
		return KernelLinux, true
	}
	for k, n := range kernelNames {
		if n == name {
			return k, true
		}
	}
	return KernelLinux, false
}

// KernelFlavorOrDefault is like ParseKernelFlavor but falls back to the
// default kernel with a warning.
func KernelFlavorOrDefault(name string, logger *logrus.Entry) KernelFlavor {
	flavor, ok := ParseKernelFlavor(name)
	if !ok {
		if logger == nil {
			logger = logrus.NewEntry(logrus.StandardLogger())
		}
		logger.Warnf("Unknown kernel: %s, using default instead", name)
	}
	return flavor
}

// String returns the kernel package name.
func (k KernelFlavor) String() string {
	if name, ok := kernelNames[k]; ok {
		return name
	}
	return kernelNames[KernelLinux]
}

// Headers returns the matching headers package.
func (k KernelFlavor) Headers() string {
	return k.String() + "-headers"
}
