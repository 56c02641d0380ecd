package device

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pilebones/go-udev/crawler"
	"github.com/pilebones/go-udev/netlink"

	"casper/internal/logging"
)

// GPU describes one detected CUDA-capable device.
type GPU struct {
	// PCIAddress is the device's PCI bus address (e.g. 0000:01:00.0).
	PCIAddress string
	// Name is the marketing model name when the driver exposes it.
	Name string
	// MemoryBytes is the device memory size, 0 when unknown.
	MemoryBytes uint64
}

// Report is the outcome of a hardware probe. Absence of a GPU is a normal,
// reported outcome, never an error.
type Report struct {
	Available     bool
	DriverVersion string
	GPUs          []GPU
}

// Selector probes the host for CUDA-capable hardware and resolves
// device/compute-type defaults.
type Selector struct {
	logger *slog.Logger

	// enumerate lists udev devices bound to the nvidia driver. Replaceable
	// for tests.
	enumerate func() ([]crawler.Device, error)
	procRoot  string
}

// NewSelector creates a Selector that reports through the given logger.
func NewSelector(logger *slog.Logger) *Selector {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Selector{
		logger:    logger,
		enumerate: enumerateNvidiaDevices,
		procRoot:  "/proc",
	}
}

// Probe checks GPU availability and reports hardware details. It is a pure
// query: idempotent, no shared state, and safe to skip entirely.
func (s *Selector) Probe() Report {
	report := Report{}

	report.DriverVersion = s.readDriverVersion()

	devices, err := s.enumerate()
	if err != nil {
		// Enumeration failure is treated as "no accelerated hardware".
		s.logger.Debug("udev enumeration failed", slog.Any("error", err))
	}
	for _, dev := range devices {
		gpu := GPU{PCIAddress: filepath.Base(dev.KObj)}
		s.fillGPUDetails(&gpu)
		report.GPUs = append(report.GPUs, gpu)
	}

	report.Available = len(report.GPUs) > 0 || report.DriverVersion != ""

	if report.Available {
		s.logger.Info("CUDA-capable hardware detected",
			slog.Int("gpu_count", len(report.GPUs)),
			slog.String("driver_version", report.DriverVersion),
		)
		for _, gpu := range report.GPUs {
			attrs := []any{slog.String("pci_address", gpu.PCIAddress)}
			if gpu.Name != "" {
				attrs = append(attrs, slog.String("model", gpu.Name))
			}
			if gpu.MemoryBytes > 0 {
				attrs = append(attrs, slog.String("memory", humanize.IBytes(gpu.MemoryBytes)))
			}
			s.logger.Info("gpu", attrs...)
		}
	} else {
		s.logger.Info("no CUDA-capable GPU detected")
	}

	return report
}

// readDriverVersion extracts the version token from
// /proc/driver/nvidia/version, empty when the driver is absent.
func (s *Selector) readDriverVersion() string {
	data, err := os.ReadFile(filepath.Join(s.procRoot, "driver", "nvidia", "version"))
	if err != nil {
		return ""
	}
	// First line looks like:
	// NVRM version: NVIDIA UNIX x86_64 Kernel Module  550.54.14  ...
	line, _, _ := strings.Cut(string(data), "\n")
	fields := strings.Fields(line)
	for i, field := range fields {
		if field == "Module" && i+1 < len(fields) {
			return fields[i+1]
		}
	}
	return strings.TrimSpace(line)
}

// fillGPUDetails reads the per-GPU information file the nvidia driver exposes
// under /proc and optional sysfs memory counters.
func (s *Selector) fillGPUDetails(gpu *GPU) {
	infoPath := filepath.Join(s.procRoot, "driver", "nvidia", "gpus", gpu.PCIAddress, "information")
	file, err := os.Open(infoPath)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		key, value, found := strings.Cut(scanner.Text(), ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "Model":
			gpu.Name = value
		case "Video Memory":
			if bytes, err := humanize.ParseBytes(value); err == nil {
				gpu.MemoryBytes = bytes
			}
		}
	}
}

func enumerateNvidiaDevices() ([]crawler.Device, error) {
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Env: map[string]string{"DRIVER": "nvidia"},
	})

	queue := make(chan crawler.Device)
	errs := make(chan error)
	quit := crawler.ExistingDevices(queue, errs, rules)
	defer close(quit)

	var devices []crawler.Device
	for {
		select {
		case dev, more := <-queue:
			if !more {
				return devices, nil
			}
			devices = append(devices, dev)
		case err := <-errs:
			return devices, err
		}
	}
}

// Resolve fills unspecified device and compute-type values. An empty device
// becomes cuda when accelerated hardware is available, cpu otherwise; an
// empty compute type derives float16 for cuda and int8 for cpu.
func Resolve(deviceName, computeType string, available bool) (string, string) {
	if deviceName == "" {
		if available {
			deviceName = "cuda"
		} else {
			deviceName = "cpu"
		}
	}
	if computeType == "" {
		if deviceName == "cuda" {
			computeType = "float16"
		} else {
			computeType = "int8"
		}
	}
	return deviceName, computeType
}
