package device

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pilebones/go-udev/crawler"

	"casper/internal/logging"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name        string
		device      string
		compute     string
		available   bool
		wantDevice  string
		wantCompute string
	}{
		{"auto gpu", "", "", true, "cuda", "float16"},
		{"auto cpu", "", "", false, "cpu", "int8"},
		{"explicit cpu on gpu host", "cpu", "", true, "cpu", "int8"},
		{"explicit cuda keeps float16", "cuda", "", false, "cuda", "float16"},
		{"explicit compute kept", "cpu", "float32", true, "cpu", "float32"},
		{"all explicit", "cuda", "int8", false, "cuda", "int8"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			device, compute := Resolve(tc.device, tc.compute, tc.available)
			if device != tc.wantDevice || compute != tc.wantCompute {
				t.Fatalf("Resolve(%q, %q, %v) = (%q, %q), want (%q, %q)",
					tc.device, tc.compute, tc.available, device, compute, tc.wantDevice, tc.wantCompute)
			}
		})
	}
}

func TestProbeReportsDetectedGPU(t *testing.T) {
	proc := t.TempDir()
	gpuDir := filepath.Join(proc, "driver", "nvidia", "gpus", "0000:01:00.0")
	if err := os.MkdirAll(gpuDir, 0o755); err != nil {
		t.Fatal(err)
	}
	version := "NVRM version: NVIDIA UNIX x86_64 Kernel Module  550.54.14  Thu Feb 22 01:44:30 UTC 2024\n"
	if err := os.WriteFile(filepath.Join(proc, "driver", "nvidia", "version"), []byte(version), 0o644); err != nil {
		t.Fatal(err)
	}
	information := "Model: \t NVIDIA GeForce RTX 3090\nIRQ:   \t 131\nVideo Memory: \t 24 GiB\n"
	if err := os.WriteFile(filepath.Join(gpuDir, "information"), []byte(information), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewSelector(logging.NewNop())
	s.procRoot = proc
	s.enumerate = func() ([]crawler.Device, error) {
		return []crawler.Device{{KObj: "/sys/devices/pci0000:00/0000:01:00.0", Env: map[string]string{"DRIVER": "nvidia"}}}, nil
	}

	report := s.Probe()
	if !report.Available {
		t.Fatal("expected hardware to be reported available")
	}
	if report.DriverVersion != "550.54.14" {
		t.Fatalf("unexpected driver version: %q", report.DriverVersion)
	}
	if len(report.GPUs) != 1 {
		t.Fatalf("expected one gpu, got %d", len(report.GPUs))
	}
	gpu := report.GPUs[0]
	if gpu.PCIAddress != "0000:01:00.0" {
		t.Fatalf("unexpected pci address: %q", gpu.PCIAddress)
	}
	if gpu.Name != "NVIDIA GeForce RTX 3090" {
		t.Fatalf("unexpected model: %q", gpu.Name)
	}
	if gpu.MemoryBytes == 0 {
		t.Fatal("expected memory to be parsed")
	}
}

func TestProbeWithoutHardware(t *testing.T) {
	s := NewSelector(logging.NewNop())
	s.procRoot = t.TempDir()
	s.enumerate = func() ([]crawler.Device, error) { return nil, nil }

	report := s.Probe()
	if report.Available {
		t.Fatal("expected no hardware")
	}
	if len(report.GPUs) != 0 {
		t.Fatalf("expected no gpus, got %d", len(report.GPUs))
	}

	// The probe is a pure query; repeating it yields the same outcome.
	if again := s.Probe(); again.Available {
		t.Fatal("expected probe to stay unavailable")
	}
}
