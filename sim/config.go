// Defines SimulationSettings: the single strongly-typed configuration
// record materialized once at configure/reset, loaded from YAML. No
// dynamic key/value map is threaded through the rest of the code.
package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WorkloadMode selects the trace format read at reset.
type WorkloadMode string

const (
	WorkloadSWF WorkloadMode = "SWF"
	WorkloadCSV WorkloadMode = "CSV"
)

// SimulationSettings groups every configuration option exposed by
// `configure`. Field names mirror the glossary's snake_case
// option names via yaml tags.
type SimulationSettings struct {
	HostsCount  int64   `yaml:"hosts_count"`
	HostPes     int64   `yaml:"host_pes"`
	HostPeMips  float64 `yaml:"host_pe_mips"`
	HostRAM     int64   `yaml:"host_ram"`
	HostBw      int64   `yaml:"host_bw"`
	HostStorage int64   `yaml:"host_storage"`

	SmallVmPes     int64 `yaml:"small_vm_pes"`
	SmallVmRAM     int64 `yaml:"small_vm_ram"`
	SmallVmBw      int64 `yaml:"small_vm_bw"`
	SmallVmStorage int64 `yaml:"small_vm_storage"`

	MediumVmMultiplier int64 `yaml:"medium_vm_multiplier"`
	LargeVmMultiplier  int64 `yaml:"large_vm_multiplier"`

	InitialSVmCount int64 `yaml:"initial_s_vm_count"`
	InitialMVmCount int64 `yaml:"initial_m_vm_count"`
	InitialLVmCount int64 `yaml:"initial_l_vm_count"`

	WorkloadMode      WorkloadMode `yaml:"workload_mode"`
	CloudletTraceFile string       `yaml:"cloudlet_trace_file"`
	WorkloadReaderMips float64     `yaml:"workload_reader_mips"`

	MaxCloudletsToCreateFromWorkloadFile int64 `yaml:"max_cloudlets_to_create_from_workload_file"`
	SplitLargeCloudlets                  bool  `yaml:"split_large_cloudlets"`
	MaxCloudletPes                       int64 `yaml:"max_cloudlet_pes"`

	SimulationTimestep    int64 `yaml:"simulation_timestep"`
	MinTimeBetweenEvents  int64 `yaml:"min_time_between_events"`
	VmStartupDelay        int64 `yaml:"vm_startup_delay"`
	VmShutdownDelay       int64 `yaml:"vm_shutdown_delay"`
	MaxEpisodeLength      int64 `yaml:"max_episode_length"`

	RewardWaitTimeCoef     float64  `yaml:"reward_wait_time_coef"`
	RewardUnutilizationCoef float64 `yaml:"reward_unutilization_coef"`
	RewardCostCoef         *float64 `yaml:"reward_cost_coef"` // nil = cost component disabled (open question, resolved in DESIGN.md)
	RewardQueuePenaltyCoef float64  `yaml:"reward_queue_penalty_coef"`
	RewardInvalidActionCoef float64 `yaml:"reward_invalid_action_coef"`
}

// DefaultSimulationSettings returns the baseline configuration used when a
// caller does not override a field; values mirror the original Java
// gateway's SimulationSettings defaults.
func DefaultSimulationSettings() SimulationSettings {
	return SimulationSettings{
		HostsCount:  2,
		HostPes:     16,
		HostPeMips:  10000,
		HostRAM:     64000,
		HostBw:      100000,
		HostStorage: 1000000,

		SmallVmPes:     2,
		SmallVmRAM:     4000,
		SmallVmBw:      1000,
		SmallVmStorage: 10000,

		MediumVmMultiplier: 2,
		LargeVmMultiplier:  4,

		InitialSVmCount: 1,
		InitialMVmCount: 0,
		InitialLVmCount: 0,

		WorkloadMode:       WorkloadCSV,
		WorkloadReaderMips: 3000,

		MaxCloudletsToCreateFromWorkloadFile: 1000,
		SplitLargeCloudlets:                  true,
		MaxCloudletPes:                       8,

		SimulationTimestep:   1,
		MinTimeBetweenEvents: 1,
		VmStartupDelay:       0,
		VmShutdownDelay:      0,
		MaxEpisodeLength:     10000,

		RewardWaitTimeCoef:      1.0,
		RewardUnutilizationCoef: 1.0,
		RewardCostCoef:          nil,
		RewardQueuePenaltyCoef:  1.0,
		RewardInvalidActionCoef: 1.0,
	}
}

// LoadSimulationSettings reads YAML from path, overlaying it onto the
// defaults, and validates the merged result. Configuration errors fail
// fast here with a descriptive error, before any simulation starts.
func LoadSimulationSettings(path string) (SimulationSettings, error) {
	s := DefaultSimulationSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("reading simulation settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parsing simulation settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// Validate checks the merged settings for configuration errors: unknown
// workload mode, non-positive MIPS, a missing trace file, etc.
func (s SimulationSettings) Validate() error {
	switch s.WorkloadMode {
	case WorkloadSWF, WorkloadCSV:
	default:
		return fmt.Errorf("unknown workload_mode %q", s.WorkloadMode)
	}
	if s.CloudletTraceFile == "" {
		return fmt.Errorf("cloudlet_trace_file must be set")
	}
	if _, err := os.Stat(s.CloudletTraceFile); err != nil {
		return fmt.Errorf("cloudlet_trace_file %q: %w", s.CloudletTraceFile, err)
	}
	if s.HostPeMips <= 0 {
		return fmt.Errorf("host_pe_mips must be positive, got %v", s.HostPeMips)
	}
	if s.WorkloadReaderMips <= 0 {
		return fmt.Errorf("workload_reader_mips must be positive, got %v", s.WorkloadReaderMips)
	}
	if s.HostsCount <= 0 {
		return fmt.Errorf("hosts_count must be positive, got %v", s.HostsCount)
	}
	if s.SimulationTimestep <= 0 {
		return fmt.Errorf("simulation_timestep must be positive, got %v", s.SimulationTimestep)
	}
	if s.MinTimeBetweenEvents <= 0 {
		return fmt.Errorf("min_time_between_events must be positive, got %v", s.MinTimeBetweenEvents)
	}
	if s.SplitLargeCloudlets && s.MaxCloudletPes <= 0 {
		return fmt.Errorf("max_cloudlet_pes must be positive when split_large_cloudlets is set, got %v", s.MaxCloudletPes)
	}
	return nil
}

// SmallVmSpec derives the base Small VM resource spec from settings.
func (s SimulationSettings) smallVmSpec() SmallVmSpec {
	return SmallVmSpec{Cores: s.SmallVmPes, RAM: s.SmallVmRAM, Bw: s.SmallVmBw, Storage: s.SmallVmStorage}
}

// TotalHostCores returns the aggregate core count across every host, used
// to compute max_potential_vms and the cost reward component.
func (s SimulationSettings) TotalHostCores() int64 {
	return s.HostsCount * s.HostPes
}

// MaxPotentialVms computes ceil(1.1 * total_host_cores / small_vm_cores),
// the padding width for the VM slots in the observation.
func (s SimulationSettings) MaxPotentialVms() int64 {
	if s.SmallVmPes <= 0 {
		return 0
	}
	total := s.TotalHostCores()
	num := total*11 + s.SmallVmPes*10 - 1 // ceil(1.1*total/small) via integer arithmetic
	return num / (s.SmallVmPes * 10)
}
