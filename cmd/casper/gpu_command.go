package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"casper/internal/device"
)

func newGPUCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "gpu-check",
		Short: "Probe for CUDA-capable hardware",
		RunE: func(cmd *cobra.Command, args []string) error {
			report := device.NewSelector(ctx.logger()).Probe()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "CUDA available: %s\n", yesNo(report.Available))
			if report.DriverVersion != "" {
				fmt.Fprintf(out, "Driver version: %s\n", report.DriverVersion)
			}
			if !report.Available {
				fmt.Fprintln(out, "Transcription will run on cpu with int8 precision.")
				return nil
			}

			rows := make([][]string, 0, len(report.GPUs))
			for _, gpu := range report.GPUs {
				memory := ""
				if gpu.MemoryBytes > 0 {
					memory = humanize.IBytes(gpu.MemoryBytes)
				}
				rows = append(rows, []string{gpu.PCIAddress, gpu.Name, memory})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"PCI Address", "Model", "Memory"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
}
