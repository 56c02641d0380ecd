// Package device probes the host for CUDA-capable hardware and resolves
// inference device and compute-type defaults.
//
// Detection walks sysfs through udev looking for devices bound to the nvidia
// driver and enriches the result with details the driver publishes under
// /proc/driver/nvidia. A missing GPU is a normal, reported outcome; the probe
// never fails.
package device
